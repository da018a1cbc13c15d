package filesecurity

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestGenerateStoragePath(t *testing.T) {
	key, err := GenerateStoragePath("My Photo!!.PNG", "image", PathOptions{})
	if err != nil {
		t.Fatalf("生成对象键失败: %v", err)
	}

	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		t.Fatalf("对象键 %q 应为 日期/令牌/文件名 三段", key)
	}

	date := time.Now().UTC().Format("2006-01-02")
	if parts[0] != date {
		t.Errorf("日期段 = %q, 期望 %q", parts[0], date)
	}
	if len(parts[1]) != tokenLength {
		t.Errorf("令牌长度 = %d, 期望 %d", len(parts[1]), tokenLength)
	}
	if parts[2] != "my_photo.png" {
		t.Errorf("文件名段 = %q, 期望清洗后的 %q", parts[2], "my_photo.png")
	}
}

func TestGenerateStoragePath_用户与前缀段(t *testing.T) {
	key, err := GenerateStoragePath("a.png", "gallery", PathOptions{UserID: 42, ExtraPrefix: "albums/2026"})
	if err != nil {
		t.Fatalf("生成对象键失败: %v", err)
	}
	if !strings.HasPrefix(key, "albums/2026/users/42/") {
		t.Errorf("对象键 %q 缺少前缀或用户段", key)
	}
	if !strings.HasSuffix(key, "/a.png") {
		t.Errorf("对象键 %q 应以清洗后的文件名结尾", key)
	}
}

func TestGenerateStoragePath_令牌不重复(t *testing.T) {
	seen := make(map[string]bool)
	tokenRe := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	for i := 0; i < 1000; i++ {
		key, err := GenerateStoragePath("x.png", "image", PathOptions{})
		if err != nil {
			t.Fatalf("生成对象键失败: %v", err)
		}
		token := strings.Split(key, "/")[1]
		if !tokenRe.MatchString(token) {
			t.Fatalf("令牌 %q 含有非法字符", token)
		}
		if seen[token] {
			t.Fatalf("令牌 %q 在 1000 次生成中重复", token)
		}
		seen[token] = true
	}
}

func TestGenerateStoragePath_空桶名报错(t *testing.T) {
	if _, err := GenerateStoragePath("a.png", "", PathOptions{}); err == nil {
		t.Error("空桶名应报错")
	}
}
