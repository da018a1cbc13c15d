/*
 * @Description: 腾讯云 COS 存储驱动
 * @Author: 青崖
 * @Date: 2026-03-09 15:48:02
 * @LastEditTime: 2026-08-19 14:40:21
 * @LastEditors: 青崖
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"

	"github.com/tencentyun/cos-go-sdk-v5"
)

// TencentCOSProvider 实现了 IStorageProvider 接口，用于处理与腾讯云 COS 的所有交互。
type TencentCOSProvider struct{}

// NewTencentCOSProvider 是 TencentCOSProvider 的构造函数。
func NewTencentCOSProvider() IStorageProvider {
	return &TencentCOSProvider{}
}

// getCOSClient 获取腾讯云COS客户端。Server 字段是完整的存储桶访问域名。
func (p *TencentCOSProvider) getCOSClient(policy *model.StoragePolicy) (*cos.Client, error) {
	if policy.AccessKey == "" {
		return nil, fmt.Errorf("腾讯云COS策略缺少SecretID")
	}
	if policy.SecretKey == "" {
		return nil, fmt.Errorf("腾讯云COS策略缺少SecretKey")
	}
	if policy.Server == "" {
		return nil, fmt.Errorf("腾讯云COS策略缺少访问域名配置")
	}

	u, err := url.Parse(policy.Server)
	if err != nil {
		return nil, fmt.Errorf("解析存储桶URL失败: %w", err)
	}

	b := &cos.BaseURL{BucketURL: u}
	client := cos.NewClient(b, &http.Client{
		Timeout: 100 * time.Second,
		Transport: &cos.AuthorizationTransport{
			SecretID:  policy.AccessKey,
			SecretKey: policy.SecretKey,
		},
	})
	return client, nil
}

// Upload 上传文件到腾讯云 COS。
func (p *TencentCOSProvider) Upload(ctx context.Context, file io.Reader, policy *model.StoragePolicy, objectKey string) (*UploadResult, error) {
	client, err := p.getCOSClient(policy)
	if err != nil {
		return nil, err
	}

	resp, err := client.Object.Put(ctx, objectKey, file, nil)
	if err != nil {
		log.Printf("[腾讯云COS] 上传失败: objectKey=%s, 错误: %v", objectKey, err)
		return nil, fmt.Errorf("上传文件到腾讯云COS失败: %w", err)
	}
	defer resp.Body.Close()

	// Put 的响应不含对象大小，按需补一次 Head
	head, err := client.Object.Head(ctx, objectKey, nil)
	if err != nil {
		return nil, fmt.Errorf("获取上传后的文件信息失败: %w", err)
	}
	defer head.Body.Close()

	return &UploadResult{
		Key:      objectKey,
		Size:     head.ContentLength,
		MimeType: head.Header.Get("Content-Type"),
	}, nil
}

// Get 从腾讯云 COS 获取文件流。
func (p *TencentCOSProvider) Get(ctx context.Context, policy *model.StoragePolicy, objectKey string) (io.ReadCloser, error) {
	client, err := p.getCOSClient(policy)
	if err != nil {
		return nil, err
	}

	resp, err := client.Object.Get(ctx, objectKey, nil)
	if err != nil {
		return nil, fmt.Errorf("从腾讯云COS获取文件失败: %w", err)
	}
	return resp.Body, nil
}

// DeleteSingle 从腾讯云 COS 删除单个对象。
func (p *TencentCOSProvider) DeleteSingle(ctx context.Context, policy *model.StoragePolicy, objectKey string) error {
	client, err := p.getCOSClient(policy)
	if err != nil {
		return err
	}

	if _, err := client.Object.Delete(ctx, objectKey); err != nil {
		return fmt.Errorf("从腾讯云COS删除对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

// IsExist 检查腾讯云 COS 中的对象是否存在。
func (p *TencentCOSProvider) IsExist(ctx context.Context, policy *model.StoragePolicy, objectKey string) (bool, error) {
	client, err := p.getCOSClient(policy)
	if err != nil {
		return false, err
	}

	_, err = client.Object.Head(ctx, objectKey, nil)
	if err != nil {
		if cosErr, ok := err.(*cos.ErrorResponse); ok {
			if cosErr.Code == "NoSuchKey" || cosErr.Response.StatusCode == http.StatusNotFound {
				return false, nil
			}
		}
		return false, err
	}
	return true, nil
}

// ListAllObjects 递归列出策略 BasePath 前缀下的全部对象，用 Marker 翻页。
func (p *TencentCOSProvider) ListAllObjects(ctx context.Context, policy *model.StoragePolicy) ([]ObjectInfo, error) {
	client, err := p.getCOSClient(policy)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimPrefix(strings.TrimSuffix(policy.BasePath, "/"), "/")
	if prefix != "" {
		prefix += "/"
	}

	var objects []ObjectInfo
	marker := ""
	for {
		result, _, err := client.Bucket.Get(ctx, &cos.BucketGetOptions{
			Prefix:  prefix,
			Marker:  marker,
			MaxKeys: 1000,
		})
		if err != nil {
			return nil, fmt.Errorf("列出腾讯云COS对象失败: %w", err)
		}

		for _, content := range result.Contents {
			if strings.HasSuffix(content.Key, "/") {
				continue // 跳过目录占位对象
			}
			var modTime time.Time
			if content.LastModified != "" {
				if t, parseErr := time.Parse(time.RFC3339, content.LastModified); parseErr == nil {
					modTime = t
				} else if t, parseErr := time.Parse("2006-01-02T15:04:05.000Z", content.LastModified); parseErr == nil {
					modTime = t
				}
			}
			objects = append(objects, ObjectInfo{
				Key:          content.Key,
				Size:         content.Size,
				LastModified: modTime,
				ETag:         strings.Trim(content.ETag, `"`),
			})
		}

		if !result.IsTruncated {
			break
		}
		marker = result.NextMarker
	}

	log.Printf("[腾讯云COS] 全量列举完成 - 桶: %s, 对象数: %d", policy.Name, len(objects))
	return objects, nil
}
