/*
 * @Description: 上传准入校验器：归类、清洗、策略检查的单次编排
 * @Author: 青崖
 * @Date: 2026-03-15 09:12:56
 * @LastEditTime: 2026-08-24 14:27:31
 * @LastEditors: 青崖
 */
package filesecurity

import (
	"fmt"
	"strings"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"
)

const maxFileNameLength = 255

// Validate 对单个候选上传执行完整的准入校验。
// 所有问题一次收集完再返回，不短路，让管理员能一次看到全部需要修正的点。
// 除自定义回调外是纯函数：相同输入永远得到相同结果，内部无任何网络或存储 I/O。
func Validate(candidate *model.UploadCandidate, opts model.ValidateOptions, limits model.SiteLimits) *model.ValidationResult {
	result := &model.ValidationResult{
		Bucket: opts.Bucket,
	}

	// 1. 清洗文件名；发生变化只是提示，不是错误
	sanitized := SanitizeFilename(candidate.Name)
	result.SanitizedName = sanitized
	if sanitized != candidate.Name {
		result.Warnings = append(result.Warnings, fmt.Sprintf("文件名已被清洗: %q -> %q", candidate.Name, sanitized))
	}

	// 2. 拒绝名单检查，优先于类别归类
	if IsDangerousExtension(candidate.Name) {
		result.Errors = append(result.Errors, fmt.Sprintf("危险的文件扩展名: %s", extOf(candidate.Name)))
	}
	if IsDangerousMIME(candidate.DeclaredMIME) {
		result.Errors = append(result.Errors, fmt.Sprintf("危险的文件类型: %s", candidate.DeclaredMIME))
	}

	// 文件头与声明类型的一致性、嵌入式可执行内容检查
	result.Errors = append(result.Errors, CheckContent(candidate.DeclaredMIME, candidate.Head)...)

	// 3. 类别归类
	category, classified := Classify(candidate.Name, candidate.DeclaredMIME)
	if classified {
		result.DetectedType = category.String()
	} else if !opts.AllowAnyType {
		result.Errors = append(result.Errors,
			fmt.Sprintf("不支持的文件类型，可接受: %s", strings.Join(CategoryDescriptions(), "; ")))
	}

	// 4. 已归类时检查类别自身的桶白名单与大小上限
	if classified {
		def := category.Def()
		if _, ok := def.Buckets[opts.Bucket]; !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("类别 %s 不允许上传到存储桶 %s", category, opts.Bucket))
		}
		if candidate.Size > def.MaxSize {
			result.Errors = append(result.Errors,
				fmt.Sprintf("文件大小 %s 超过类别 %s 的上限 %s",
					humanSize(candidate.Size), category, humanSize(def.MaxSize)))
		}
	}

	// 5. 有效尺寸上限 = 调用方覆盖 > 桶级配置 > 全站默认
	effectiveLimit := limits.EffectiveLimit(opts.Bucket)
	if opts.MaxSizeOverride > 0 {
		effectiveLimit = opts.MaxSizeOverride
	}
	if effectiveLimit > 0 && candidate.Size > effectiveLimit {
		result.Errors = append(result.Errors,
			fmt.Sprintf("文件大小 %s 超过存储桶 %s 的上限 %s",
				humanSize(candidate.Size), opts.Bucket, humanSize(effectiveLimit)))
	}

	// 6. 原始文件名长度
	if len(candidate.Name) > maxFileNameLength {
		result.Errors = append(result.Errors, fmt.Sprintf("文件名长度超过 %d 个字符", maxFileNameLength))
	}

	// 7. 空文件
	if candidate.Size == 0 {
		result.Errors = append(result.Errors, "文件内容为空")
	}

	// 8. 自定义校验回调；回调 panic 转为校验错误而不是让请求崩溃
	if opts.CustomCheck != nil {
		result.Errors = append(result.Errors, runCustomCheck(opts.CustomCheck, candidate)...)
	}

	// 9. 不变式: IsValid == (len(Errors) == 0)
	result.IsValid = len(result.Errors) == 0
	return result
}

func runCustomCheck(check model.CustomCheckFunc, candidate *model.UploadCandidate) (errs []string) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, fmt.Sprintf("自定义校验执行失败: %v", r))
		}
	}()
	return check(candidate)
}

// humanSize 把字节数格式化为人类可读的大小。
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}
