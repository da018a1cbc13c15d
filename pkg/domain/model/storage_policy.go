/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-03-05 14:20:36
 * @LastEditTime: 2026-08-12 10:08:44
 * @LastEditors: 青崖
 */
package model

import "github.com/luoying-studio/luoying-app/pkg/constant"

// StoragePolicy 是某个存储桶的存储策略领域模型。
// 策略在进程启动时从配置文件整体载入一次，此后只读，
// 因此并发的上传校验/扫描之间不需要任何加锁。
type StoragePolicy struct {
	// Name 是策略对应的逻辑桶名（如 "image"、"custom"）。
	Name string

	// Type 决定使用哪个存储驱动。
	Type constant.StoragePolicyType

	// Server 是云端 endpoint 或区域；本地存储留空。
	// S3: 区域名（"us-west-2"）或完整 endpoint URL；COS: 完整存储桶 URL。
	Server string

	// BucketName 是云端实际的存储桶名；本地存储留空。
	BucketName string

	AccessKey string
	SecretKey string

	// BasePath 是对象键的公共前缀；本地存储时为磁盘根目录。
	BasePath string

	// MaxSize 是该桶的上传大小上限（字节），0 表示使用全站默认值。
	MaxSize int64

	// AllowAnyType 为 true 时，允许上传未能归入任何文件类别的类型
	//（危险扩展名/内容检查仍然生效）。
	AllowAnyType bool
}

// SiteLimits 是注入给上传校验器的全站尺寸限制。
// 显式传入而不是读取全局状态，保证校验是其输入的纯函数。
type SiteLimits struct {
	// DefaultMaxSize 是桶级上限未配置时的兜底上限（字节）。
	DefaultMaxSize int64

	// BucketMaxSize 按桶名覆盖上限（字节）。
	BucketMaxSize map[string]int64
}

// EffectiveLimit 计算某个桶的有效大小上限。
func (l SiteLimits) EffectiveLimit(bucket string) int64 {
	if v, ok := l.BucketMaxSize[bucket]; ok && v > 0 {
		return v
	}
	return l.DefaultMaxSize
}
