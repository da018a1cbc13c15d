/*
 * @Description: 定义了所有存储驱动需要遵守的接口和公共结构
 * @Author: 青崖
 * @Date: 2026-03-08 21:14:30
 * @LastEditTime: 2026-08-19 10:52:07
 * @LastEditors: 青崖
 */
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"
)

// ObjectInfo 封装了全量列举返回的单个对象的信息。
// 这是为了统一本地和云端存储的返回结构，让上层服务（如重复文件扫描器）可以透明处理。
type ObjectInfo struct {
	Key          string    // 完整对象键（本地存储为相对 BasePath 的路径）
	Size         int64     // 字节数
	LastModified time.Time // 最后修改时间
	// ETag 是存储端提供的实体标签（去掉引号）。
	// 仅当它是一个普通的 32 位十六进制 MD5 时才可作为内容哈希使用，
	// 分片上传产生的带 "-" 的 ETag 不是内容哈希。
	ETag string
}

// UploadResult 封装了上传操作成功后的文件信息。
type UploadResult struct {
	Key      string // 实际写入的对象键
	Size     int64
	MimeType string
}

// ErrFeatureNotSupported 表示某个功能不被当前驱动支持。
var ErrFeatureNotSupported = errors.New("feature not supported by this provider")

// IStorageProvider 定义了所有存储驱动必须实现的接口。
// 所有方法中的 objectKey 都是完整对象键（已包含策略的 BasePath 前缀），
// 由上层的路径生成器负责产出，驱动不再做路径换算。
type IStorageProvider interface {
	// Upload 将文件流写入到指定策略的 objectKey。
	Upload(ctx context.Context, file io.Reader, policy *model.StoragePolicy, objectKey string) (*UploadResult, error)

	// Get 返回对象内容的可读流，调用方负责 Close。
	Get(ctx context.Context, policy *model.StoragePolicy, objectKey string) (io.ReadCloser, error)

	// DeleteSingle 删除单个对象。对象不存在时返回错误，由调用方决定如何归类。
	DeleteSingle(ctx context.Context, policy *model.StoragePolicy, objectKey string) error

	// IsExist 检查对象是否存在。
	IsExist(ctx context.Context, policy *model.StoragePolicy, objectKey string) (bool, error)

	// ListAllObjects 递归列举策略下的全部对象（云端驱动自动翻页）。
	// 列举本身失败意味着存储不可达，整个操作报错；单个条目异常由调用方跳过。
	ListAllObjects(ctx context.Context, policy *model.StoragePolicy) ([]ObjectInfo, error)
}
