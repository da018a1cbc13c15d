/*
 * @Description: 本地磁盘存储驱动
 * @Author: 青崖
 * @Date: 2026-03-08 21:40:12
 * @LastEditTime: 2026-08-19 11:30:46
 * @LastEditors: 青崖
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"
)

// LocalProvider 实现了 IStorageProvider 接口，把对象存放在本机磁盘上。
// 策略的 BasePath 是存储根目录，对象键是相对它的路径。
type LocalProvider struct{}

// NewLocalProvider 是 LocalProvider 的构造函数。
func NewLocalProvider() IStorageProvider {
	return &LocalProvider{}
}

// physicalPath 把对象键换算成磁盘绝对路径，并防止越出存储根目录。
func (p *LocalProvider) physicalPath(policy *model.StoragePolicy, objectKey string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("非法的对象键: %s", objectKey)
	}
	return filepath.Join(policy.BasePath, cleaned), nil
}

// Upload 实现了将文件流保存到本机磁盘的逻辑。
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, policy *model.StoragePolicy, objectKey string) (*UploadResult, error) {
	finalPath, err := p.physicalPath(policy, objectKey)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("无法创建存储子目录 '%s': %w", filepath.Dir(finalPath), err)
	}

	// 先写同目录下的临时文件，再原子改名，避免半截文件被扫描器看到。
	tempFile, err := os.CreateTemp(filepath.Dir(finalPath), ".luoying-upload-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("无法创建临时文件: %w", err)
	}
	tempName := tempFile.Name()
	defer os.Remove(tempName)

	size, err := io.Copy(tempFile, file)
	if err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("无法重置临时文件指针以检测MIME类型: %w", err)
	}
	buffer := make([]byte, 512)
	n, err := tempFile.Read(buffer)
	if err != nil && err != io.EOF {
		tempFile.Close()
		return nil, fmt.Errorf("读取文件头以检测MIME类型失败: %w", err)
	}
	mimeType := http.DetectContentType(buffer[:n])

	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tempName, finalPath); err != nil {
		return nil, fmt.Errorf("移动文件到最终存储位置 '%s' 失败: %w", finalPath, err)
	}

	return &UploadResult{
		Key:      objectKey,
		Size:     size,
		MimeType: mimeType,
	}, nil
}

// Get 返回本机磁盘上对象的可读流。
func (p *LocalProvider) Get(ctx context.Context, policy *model.StoragePolicy, objectKey string) (io.ReadCloser, error) {
	path, err := p.physicalPath(policy, objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开本地文件 '%s' 失败: %w", path, err)
	}
	return f, nil
}

// DeleteSingle 删除本机磁盘上的单个对象。
func (p *LocalProvider) DeleteSingle(ctx context.Context, policy *model.StoragePolicy, objectKey string) error {
	path, err := p.physicalPath(policy, objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("删除本地文件 '%s' 失败: %w", path, err)
	}
	return nil
}

// IsExist 检查对象在本机磁盘上是否存在。
func (p *LocalProvider) IsExist(ctx context.Context, policy *model.StoragePolicy, objectKey string) (bool, error) {
	path, err := p.physicalPath(policy, objectKey)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAllObjects 递归遍历存储根目录下的全部文件。
// 本地存储没有 ETag，返回的 ObjectInfo.ETag 为空，由上层自行计算内容哈希。
func (p *LocalProvider) ListAllObjects(ctx context.Context, policy *model.StoragePolicy) ([]ObjectInfo, error) {
	root := policy.BasePath
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			// 空桶：根目录还没被任何上传创建过
			return nil, nil
		}
		return nil, fmt.Errorf("无法访问本地存储目录 '%s': %w", root, err)
	}

	var objects []ObjectInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// 单个条目不可读：记录并继续，不让一个坏文件挡住整个列举
			log.Printf("[本地存储] 警告: 遍历 '%s' 失败，已跳过: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Printf("[本地存储] 警告: 读取 '%s' 的元信息失败，已跳过: %v", path, err)
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		objects = append(objects, ObjectInfo{
			Key:          filepath.ToSlash(rel),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历本地存储目录失败: %w", err)
	}
	return objects, nil
}
