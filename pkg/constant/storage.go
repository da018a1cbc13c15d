/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-03-02 11:02:11
 * @LastEditTime: 2026-08-20 09:45:33
 * @LastEditors: 青崖
 */
package constant

// StoragePolicyType 定义了存储策略的类型，提供了更强的类型安全
type StoragePolicyType string

// 定义支持的存储策略类型常量
const (
	PolicyTypeLocal      StoragePolicyType = "local"
	PolicyTypeS3         StoragePolicyType = "aws_s3"
	PolicyTypeTencentCOS StoragePolicyType = "tencent_cos"
)

// IsValid 检查给定的类型是否是受支持的存储策略类型
func (t StoragePolicyType) IsValid() bool {
	switch t {
	case PolicyTypeLocal, PolicyTypeS3, PolicyTypeTencentCOS:
		return true
	default:
		return false
	}
}

// 内置存储桶名称。上传请求中的 bucket 字段必须是其中之一，
// 每个桶在配置文件的 [Storage.<bucket>] 分区中拥有独立的存储策略。
const (
	BucketImage   = "image"   // BucketImage 主图库图片
	BucketCustom  = "custom"  // BucketCustom 自定义页面图片
	BucketGallery = "gallery" // BucketGallery 相册集图片
	BucketVideo   = "video"   // BucketVideo 视频
	BucketFiles   = "files"   // BucketFiles 文档与其他附件
)

// DefaultBuckets 是未配置 Storage.Buckets 时使用的默认桶列表。
var DefaultBuckets = []string{BucketImage, BucketCustom, BucketGallery, BucketVideo, BucketFiles}
