/*
 * @Description: 客户端文件名的安全清洗
 * @Author: 青崖
 * @Date: 2026-03-14 14:25:09
 * @LastEditTime: 2026-08-24 11:40:12
 * @LastEditors: 青崖
 */
package filesecurity

import (
	"path/filepath"
	"regexp"
	"strings"
)

const maxStemLength = 100

var (
	hostileChars   = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	invalidChars   = regexp.MustCompile(`[^a-z0-9._-]`)
	dotRuns        = regexp.MustCompile(`\.{2,}`)
	underscoreRuns = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename 把任意客户端文件名清洗为安全、有界、可直接落盘的名字。
// 全函数（任何输入都有结果）且幂等：SanitizeFilename(SanitizeFilename(x)) == SanitizeFilename(x)。
// 产出只含 [a-z0-9._-]，不含 ".."，不以点开头，主干不超过 100 字符。
func SanitizeFilename(raw string) string {
	name := strings.ToLower(raw)

	// 文件系统敌意字符与空白都归一为下划线
	name = hostileChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(name, "_")

	// 其余不在白名单里的字符直接丢弃（中文、emoji、控制字符等）
	name = invalidChars.ReplaceAllString(name, "")

	// 丢弃字符可能让两个点相邻，必须在丢弃之后折叠，防止路径穿越
	name = dotRuns.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")

	// 不允许隐藏文件
	name = strings.TrimLeft(name, ".")

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if len(stem) > maxStemLength {
		stem = stem[:maxStemLength]
		name = stem + ext
	}

	if name == "" {
		return "unnamed"
	}
	return name
}
