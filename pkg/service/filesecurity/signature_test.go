package filesecurity

import (
	"strings"
	"testing"
)

var (
	pngHead  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52}
	jpegHead = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00, 0x01, 0x01, 0x00, 0x00, 0x01}
	peHead   = []byte{0x4d, 0x5a, 0x90, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0xff, 0xff, 0x00, 0x00}
)

func TestCheckContent(t *testing.T) {
	tests := []struct {
		name         string
		declaredMIME string
		head         []byte
		wantMismatch bool
		wantSuspect  bool
	}{
		{
			name:         "声明PNG且内容是PNG",
			declaredMIME: "image/png",
			head:         pngHead,
		},
		{
			name:         "声明JPEG但内容是PNG",
			declaredMIME: "image/jpeg",
			head:         pngHead,
			wantMismatch: true,
		},
		{
			name:         "声明JPEG但内容是PE可执行文件",
			declaredMIME: "image/jpeg",
			head:         peHead,
			wantMismatch: true,
			wantSuspect:  true,
		},
		{
			name:         "声明类型无已知签名时仍检查可疑内容",
			declaredMIME: "application/x-unknown",
			head:         []byte{0x7f, 0x45, 0x4c, 0x46, 0x02, 0x01, 0x01, 0x00},
			wantSuspect:  true,
		},
		{
			name:         "ZIP容器特征被标记",
			declaredMIME: "image/png",
			head:         []byte{0x50, 0x4b, 0x03, 0x04, 0x14, 0x00, 0x06, 0x00},
			wantMismatch: true,
			wantSuspect:  true,
		},
		{
			name:         "WEBP双段签名匹配",
			declaredMIME: "image/webp",
			head:         []byte("RIFF\x24\x08\x00\x00WEBPVP8 "),
		},
		{
			name:         "RIFF开头但不是WEBP",
			declaredMIME: "image/webp",
			head:         []byte("RIFF\x24\x08\x00\x00WAVEfmt "),
			wantMismatch: true,
		},
		{
			name:         "MP4在偏移4处匹配ftyp",
			declaredMIME: "video/mp4",
			head:         []byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'},
		},
		{
			name:         "MP3帧同步按掩码匹配",
			declaredMIME: "audio/mpeg",
			head:         []byte{0xff, 0xfb, 0x90, 0x64, 0x00, 0x00},
		},
		{
			name:         "空文件头跳过全部检查",
			declaredMIME: "image/png",
			head:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := CheckContent(tt.declaredMIME, tt.head)

			gotMismatch := containsSubstring(errs, "不符")
			gotSuspect := containsSubstring(errs, "可疑")

			if gotMismatch != tt.wantMismatch {
				t.Errorf("内容不符错误 = %v, 期望 %v (errs: %v)", gotMismatch, tt.wantMismatch, errs)
			}
			if gotSuspect != tt.wantSuspect {
				t.Errorf("可疑内容错误 = %v, 期望 %v (errs: %v)", gotSuspect, tt.wantSuspect, errs)
			}
			if !tt.wantMismatch && !tt.wantSuspect && len(errs) != 0 {
				t.Errorf("期望无错误，实际得到: %v", errs)
			}
		})
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestCheckContent_JPEG头不报错(t *testing.T) {
	if errs := CheckContent("image/jpeg", jpegHead); len(errs) != 0 {
		t.Errorf("合法JPEG头不应产生错误: %v", errs)
	}
}
