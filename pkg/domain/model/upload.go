/*
 * @Description: 上传准入相关的领域模型
 * @Author: 青崖
 * @Date: 2026-03-05 15:02:10
 * @LastEditTime: 2026-08-18 11:26:53
 * @LastEditors: 青崖
 */
package model

// UploadCandidate 描述一个待校验的上传文件。
// Head 是调用方预先读出的文件头部字节（最多 16 字节即可满足签名检查），
// 校验本身不做任何网络或磁盘 I/O。
type UploadCandidate struct {
	Name         string // 客户端提交的原始文件名
	DeclaredMIME string // 客户端声明的 MIME 类型
	Size         int64  // 字节数
	Head         []byte // 文件起始字节
}

// CustomCheckFunc 是调用方附加的自定义校验回调。
// 返回的每个字符串都会被追加为一条阻断性错误；回调内 panic 会被捕获并转为错误。
type CustomCheckFunc func(candidate *UploadCandidate) []string

// ValidateOptions 是单次校验的选项。
type ValidateOptions struct {
	// Bucket 是目标存储桶名。
	Bucket string

	// AllowAnyType 为 true 时，无法归类的文件不再视为错误。
	AllowAnyType bool

	// MaxSizeOverride 大于 0 时覆盖桶级与全站默认的大小上限（字节）。
	MaxSizeOverride int64

	// CustomCheck 可选的附加校验。
	CustomCheck CustomCheckFunc
}

// ValidationResult 是一次上传校验的完整结论。
// 不变式：IsValid == (len(Errors) == 0)。调用方必须以 Errors 是否为空为准。
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	Errors        []string `json:"errors"`        // 阻断性错误，全部收集后一次返回
	Warnings      []string `json:"warnings"`      // 非阻断提示（如文件名被清洗）
	SanitizedName string   `json:"sanitizedName"` // 存储时必须使用的安全文件名
	DetectedType  string   `json:"detectedType"`  // 归类出的类别名，空串表示未识别
	Bucket        string   `json:"bucket"`
}
