/*
 * @Description: AWS S3 存储驱动（使用 aws-sdk-go-v2，兼容 MinIO / Ceph RGW 等自建服务）
 * @Author: 青崖
 * @Date: 2026-03-09 10:22:14
 * @LastEditTime: 2026-08-19 14:05:38
 * @LastEditors: 青崖
 */
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AWSS3Provider 实现了 IStorageProvider 接口，用于处理与 AWS S3 的所有交互。
type AWSS3Provider struct{}

// NewAWSS3Provider 是 AWSS3Provider 的构造函数。
func NewAWSS3Provider() IStorageProvider {
	return &AWSS3Provider{}
}

// getS3Client 根据策略创建 S3 客户端。
// Server 字段可以是区域名（"us-west-2"）或完整的自定义 endpoint URL。
func (p *AWSS3Provider) getS3Client(ctx context.Context, policy *model.StoragePolicy) (*s3.Client, error) {
	if policy.BucketName == "" {
		return nil, fmt.Errorf("AWS S3策略缺少存储桶名称")
	}
	if policy.AccessKey == "" {
		return nil, fmt.Errorf("AWS S3策略缺少AccessKey")
	}
	if policy.SecretKey == "" {
		return nil, fmt.Errorf("AWS S3策略缺少SecretKey")
	}

	region := "us-east-1" // 默认区域
	var customEndpoint *string

	if policy.Server != "" {
		if strings.HasPrefix(policy.Server, "http") {
			parsedURL, err := url.Parse(policy.Server)
			if err == nil {
				server := policy.Server
				customEndpoint = &server
				// 尝试从 amazonaws.com 域名中提取区域信息
				if strings.Contains(parsedURL.Host, "amazonaws.com") {
					parts := strings.Split(parsedURL.Host, ".")
					if len(parts) >= 4 && strings.HasPrefix(parts[1], "s3") {
						region = parts[2]
					}
				}
			}
		} else {
			region = policy.Server
		}
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			policy.AccessKey,
			policy.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("创建AWS S3配置失败: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if customEndpoint != nil {
			o.BaseEndpoint = aws.String(*customEndpoint)
			o.UsePathStyle = true // 自定义 endpoint 通常需要 path-style
		}
	})
	return client, nil
}

// Upload 上传文件到 AWS S3。
// 内容先读入内存以取得准确的 ContentLength 和 SHA256 校验和，
// 否则部分第三方 S3 兼容服务会报 XAmzContentSHA256Mismatch。
func (p *AWSS3Provider) Upload(ctx context.Context, file io.Reader, policy *model.StoragePolicy, objectKey string) (*UploadResult, error) {
	client, err := p.getS3Client(ctx, policy)
	if err != nil {
		return nil, err
	}

	fileContent, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	contentLength := int64(len(fileContent))

	detectedMimeType := mime.TypeByExtension(filepath.Ext(objectKey))
	if detectedMimeType == "" {
		detectedMimeType = "application/octet-stream"
	}

	hash := sha256.Sum256(fileContent)
	checksumSHA256 := base64.StdEncoding.EncodeToString(hash[:])

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(policy.BucketName),
		Key:            aws.String(objectKey),
		Body:           bytes.NewReader(fileContent),
		ContentLength:  aws.Int64(contentLength),
		ContentType:    aws.String(detectedMimeType),
		ChecksumSHA256: aws.String(checksumSHA256),
	})
	if err != nil {
		log.Printf("[AWS S3] 上传失败: objectKey=%s, 错误: %v", objectKey, err)
		return nil, fmt.Errorf("上传文件到AWS S3失败: %w", err)
	}

	return &UploadResult{
		Key:      objectKey,
		Size:     contentLength,
		MimeType: detectedMimeType,
	}, nil
}

// Get 从 AWS S3 获取文件流。
func (p *AWSS3Provider) Get(ctx context.Context, policy *model.StoragePolicy, objectKey string) (io.ReadCloser, error) {
	client, err := p.getS3Client(ctx, policy)
	if err != nil {
		return nil, err
	}

	output, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(policy.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("从AWS S3获取文件失败: %w", err)
	}
	return output.Body, nil
}

// DeleteSingle 从 AWS S3 删除单个对象。
func (p *AWSS3Provider) DeleteSingle(ctx context.Context, policy *model.StoragePolicy, objectKey string) error {
	client, err := p.getS3Client(ctx, policy)
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(policy.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("从AWS S3删除对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

// IsExist 检查 AWS S3 中的对象是否存在。
func (p *AWSS3Provider) IsExist(ctx context.Context, policy *model.StoragePolicy, objectKey string) (bool, error) {
	client, err := p.getS3Client(ctx, policy)
	if err != nil {
		return false, err
	}

	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(policy.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAllObjects 递归列出策略 BasePath 前缀下的全部对象，自动处理分页。
func (p *AWSS3Provider) ListAllObjects(ctx context.Context, policy *model.StoragePolicy) ([]ObjectInfo, error) {
	client, err := p.getS3Client(ctx, policy)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimPrefix(strings.TrimSuffix(policy.BasePath, "/"), "/")
	if prefix != "" {
		prefix += "/"
	}

	var objects []ObjectInfo
	var continuationToken *string
	for {
		output, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(policy.BucketName),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("列出AWS S3对象失败: %w", err)
		}

		for _, obj := range output.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue // 跳过目录占位对象
			}
			info := ObjectInfo{Key: *obj.Key}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			if obj.ETag != nil {
				info.ETag = strings.Trim(*obj.ETag, `"`)
			}
			objects = append(objects, info)
		}

		if output.IsTruncated == nil || !*output.IsTruncated {
			break
		}
		continuationToken = output.NextContinuationToken
	}

	log.Printf("[AWS S3] 全量列举完成 - 桶: %s, 对象数: %d", policy.Name, len(objects))
	return objects, nil
}
