/*
 * @Description: 存储路径（对象键）生成器
 * @Author: 青崖
 * @Date: 2026-03-15 11:08:22
 * @LastEditTime: 2026-08-24 15:02:47
 * @LastEditors: 青崖
 */
package filesecurity

import (
	"fmt"
	"strings"
	"time"

	"github.com/luoying-studio/luoying-app/internal/pkg/utils"
)

// PathOptions 是对象键生成的可选参数。
type PathOptions struct {
	// UserID 大于 0 时在键中加入 users/{uid}/ 段。
	UserID uint

	// ExtraPrefix 放在整个键的最前面（如相册集标识），内部的斜杠保留。
	ExtraPrefix string
}

// tokenLength 为 16 个 Base64 字符，约 96 bit 熵，
// 进程生命周期内两次调用生成相同 token 的概率可以忽略。
const tokenLength = 16

// GenerateStoragePath 为一次已通过校验的上传生成对象键：
//
//	[extraPrefix/][users/{uid}/]YYYY-MM-DD/{token}/{sanitizedName}
//
// 日期取 UTC，保证多实例部署时分区一致；随机 token 让键不可猜测，
// 也让并发上传的键冲突只剩概率意义，不需要跨请求加锁。
func GenerateStoragePath(fileName, bucket string, opts PathOptions) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("存储桶名不能为空")
	}

	token, err := utils.GenerateRandomString(tokenLength)
	if err != nil {
		return "", fmt.Errorf("生成随机路径令牌失败: %w", err)
	}

	var parts []string
	if prefix := strings.Trim(opts.ExtraPrefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	if opts.UserID > 0 {
		parts = append(parts, fmt.Sprintf("users/%d", opts.UserID))
	}
	parts = append(parts,
		time.Now().UTC().Format("2006-01-02"),
		token,
		SanitizeFilename(fileName),
	)
	return strings.Join(parts, "/"), nil
}
