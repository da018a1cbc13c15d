/*
 * @Description: 文件头魔数检查：声明类型与真实内容的一致性校验
 * @Author: 青崖
 * @Date: 2026-03-14 11:18:40
 * @LastEditTime: 2026-08-24 11:02:33
 * @LastEditors: 青崖
 */
package filesecurity

import (
	"bytes"
	"fmt"
	"strings"
)

// segment 是签名中的一段定长字节模式。Mask 非空时按位与后再比较
//（用于 MP3 帧同步这类只固定高位的情况）。
type segment struct {
	Offset int
	Bytes  []byte
	Mask   []byte
}

func (s segment) matches(head []byte) bool {
	end := s.Offset + len(s.Bytes)
	if len(head) < end {
		return false
	}
	got := head[s.Offset:end]
	if s.Mask == nil {
		return bytes.Equal(got, s.Bytes)
	}
	for i := range s.Bytes {
		if got[i]&s.Mask[i] != s.Bytes[i] {
			return false
		}
	}
	return true
}

// signature 是一条完整的文件头签名，全部分段命中才算匹配。
type signature []segment

func (sig signature) matches(head []byte) bool {
	for _, seg := range sig {
		if !seg.matches(head) {
			return false
		}
	}
	return true
}

// mimeSignatures 把声明的 MIME 类型映射到一组候选签名，任一命中即认为内容与声明一致。
// 声明类型不在表中时跳过一致性检查（但可疑内容扫描仍然执行）。
var mimeSignatures = map[string][]signature{
	"image/jpeg": {
		{{Offset: 0, Bytes: []byte{0xff, 0xd8, 0xff}}},
	},
	"image/png": {
		{{Offset: 0, Bytes: []byte{0x89, 0x50, 0x4e, 0x47}}},
	},
	"image/gif": {
		{{Offset: 0, Bytes: []byte("GIF87a")}},
		{{Offset: 0, Bytes: []byte("GIF89a")}},
	},
	"image/webp": {
		{
			{Offset: 0, Bytes: []byte("RIFF")},
			{Offset: 8, Bytes: []byte("WEBP")},
		},
	},
	"application/pdf": {
		{{Offset: 0, Bytes: []byte{0x25, 0x50, 0x44, 0x46}}},
	},
	"video/mp4": {
		{{Offset: 4, Bytes: []byte("ftyp")}},
	},
	"audio/mpeg": {
		{{Offset: 0, Bytes: []byte("ID3")}},
		// 无 ID3 标签时以帧同步开头：0xFF 后跟高三位全 1
		{{Offset: 0, Bytes: []byte{0xff, 0xe0}, Mask: []byte{0xff, 0xe0}}},
	},
}

// suspiciousSignatures 是嵌入式可执行内容的特征，出现在文件头的任意位置都视为可疑。
// 这是基于内容的拒绝名单，与声明类型是否有已知签名无关。
var suspiciousSignatures = []struct {
	Bytes []byte
	Label string
}{
	{[]byte{0x4d, 0x5a}, "Windows PE"},
	{[]byte{0x7f, 0x45, 0x4c, 0x46}, "ELF"},
	{[]byte{0xca, 0xfe, 0xba, 0xbe}, "Java class"},
	{[]byte{0x50, 0x4b, 0x03, 0x04}, "ZIP 容器"},
}

// CheckContent 对文件起始字节做两项独立检查：
//  1. 声明的 MIME 有已知签名但真实字节不匹配 ⇒ "内容与声明类型不符"
//  2. 起始字节中出现可执行内容特征 ⇒ "检测到可疑的二进制内容"
//
// 返回的每个字符串都是一条阻断性错误。head 为空时不做任何检查。
func CheckContent(declaredMIME string, head []byte) []string {
	if len(head) == 0 {
		return nil
	}

	var errs []string
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))

	if sigs, ok := mimeSignatures[mime]; ok {
		matched := false
		for _, sig := range sigs {
			if sig.matches(head) {
				matched = true
				break
			}
		}
		if !matched {
			errs = append(errs, fmt.Sprintf("文件内容与声明的类型 %s 不符", mime))
		}
	}

	for _, sus := range suspiciousSignatures {
		if bytes.Contains(head, sus.Bytes) {
			errs = append(errs, fmt.Sprintf("检测到可疑的二进制内容 (%s 特征)", sus.Label))
			break
		}
	}

	return errs
}
