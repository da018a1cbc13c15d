/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-03-02 12:05:33
 * @LastEditTime: 2026-03-02 12:05:39
 * @LastEditors: 青崖
 */
package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandomString 生成指定长度的随机字符串。
// 每个字符约携带 6 bit 熵，16 个字符约为 96 bit，足以在进程生命周期内避免碰撞。
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// 使用 Base64 URL 编码，避免特殊字符问题
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}
