/*
 * @Description: 危险扩展名与危险 MIME 的固定拒绝名单
 * @Author: 青崖
 * @Date: 2026-03-14 10:02:17
 * @LastEditTime: 2026-08-24 10:30:55
 * @LastEditors: 青崖
 */
package filesecurity

import "strings"

// dangerousExtensions 是永久拒绝的扩展名（可执行、脚本、压缩包）。
// 拒绝名单优先于类别归类：命中即为阻断性错误。
var dangerousExtensions = setOf(
	// 可执行文件
	"exe", "dll", "com", "scr", "msi", "bin", "apk", "jar",
	// 脚本
	"sh", "bash", "bat", "cmd", "ps1", "vbs", "php", "phtml", "php3",
	"asp", "aspx", "jsp", "cgi", "pl", "py",
	// 压缩包（可携带任意内容，且无法逐项检查）
	"zip", "rar", "7z", "tar", "gz", "bz2",
)

// dangerousMIMETypes 是永久拒绝的声明 MIME 类型。
var dangerousMIMETypes = setOf(
	"application/x-msdownload",
	"application/x-dosexec",
	"application/x-executable",
	"application/x-elf",
	"application/x-sh",
	"application/x-bat",
	"application/x-php",
	"application/x-httpd-php",
	"text/x-php",
	"text/x-shellscript",
	"application/java-archive",
	"application/zip",
	"application/x-zip-compressed",
	"application/x-rar-compressed",
	"application/vnd.rar",
	"application/x-7z-compressed",
	"application/x-tar",
	"application/gzip",
)

// IsDangerousExtension 检查文件名的扩展名是否命中拒绝名单。
func IsDangerousExtension(fileName string) bool {
	_, ok := dangerousExtensions[extOf(fileName)]
	return ok
}

// IsDangerousMIME 检查声明的 MIME 类型是否命中拒绝名单。
func IsDangerousMIME(mime string) bool {
	_, ok := dangerousMIMETypes[strings.ToLower(strings.TrimSpace(mime))]
	return ok
}
