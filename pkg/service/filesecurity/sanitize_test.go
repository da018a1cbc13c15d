package filesecurity

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "普通文件名保持不变",
			input:    "photo.png",
			expected: "photo.png",
		},
		{
			name:     "大写转小写并清理标点",
			input:    "My Photo!!.PNG",
			expected: "my_photo.png",
		},
		{
			name:     "路径穿越被折叠",
			input:    "../../etc/passwd",
			expected: "_etc_passwd",
		},
		{
			name:     "敌意字符替换为下划线",
			input:    `a<b>c:d"e.txt`,
			expected: "a_b_c_d_e.txt",
		},
		{
			name:     "空白串折叠",
			input:    "my   holiday \t photo.jpg",
			expected: "my_holiday_photo.jpg",
		},
		{
			name:     "隐藏文件去掉前导点",
			input:    ".htaccess",
			expected: "htaccess",
		},
		{
			name:     "中文字符被丢弃",
			input:    "风景photo.jpg",
			expected: "photo.jpg",
		},
		{
			name:     "丢弃字符后产生的连续点也被折叠",
			input:    "a.中.b.txt",
			expected: "a_b.txt",
		},
		{
			name:     "空输入得到兜底名",
			input:    "",
			expected: "unnamed",
		},
		{
			name:     "只有点的输入折叠为下划线",
			input:    "...",
			expected: "_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, 期望 %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_幂等性(t *testing.T) {
	inputs := []string{
		"My Photo!!.PNG",
		"../../etc/passwd",
		`a<b>|c?*.jpg`,
		"  空格  与　中文.webp",
		strings.Repeat("x", 300) + ".png",
		".hidden..file",
		"",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("不满足幂等性: SanitizeFilename(%q) = %q, 再次清洗得到 %q", in, once, twice)
		}
	}
}

func TestSanitizeFilename_安全性(t *testing.T) {
	inputs := []string{
		"../..\\..//x.png",
		"..\\windows\\system32.dll",
		"a/b/c.jpg",
		strings.Repeat("很长的名字", 100) + strings.Repeat("a", 200) + ".jpeg",
		"....leading.dots",
	}
	for _, in := range inputs {
		got := SanitizeFilename(in)
		if strings.Contains(got, "..") {
			t.Errorf("输出 %q 包含 '..'", got)
		}
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("输出 %q 包含路径分隔符", got)
		}
		if strings.HasPrefix(got, ".") {
			t.Errorf("输出 %q 以点开头", got)
		}
		ext := ""
		stem := got
		if idx := strings.LastIndex(got, "."); idx >= 0 {
			stem, ext = got[:idx], got[idx:]
		}
		_ = ext
		if len(stem) > maxStemLength {
			t.Errorf("输出 %q 的主干长度 %d 超过 %d", got, len(stem), maxStemLength)
		}
	}
}

func TestSanitizeFilename_超长主干截断保留扩展名(t *testing.T) {
	in := strings.Repeat("a", 150) + ".png"
	got := SanitizeFilename(in)
	if !strings.HasSuffix(got, ".png") {
		t.Fatalf("截断后丢失扩展名: %q", got)
	}
	if len(got) != maxStemLength+len(".png") {
		t.Errorf("截断后长度 = %d, 期望 %d", len(got), maxStemLength+len(".png"))
	}
}
