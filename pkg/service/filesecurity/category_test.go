package filesecurity

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		fileName     string
		declaredMIME string
		expected     FileCategory
		ok           bool
	}{
		{
			name:         "扩展名命中图片",
			fileName:     "photo.JPG",
			declaredMIME: "",
			expected:     CategoryImage,
			ok:           true,
		},
		{
			name:         "仅MIME命中图片",
			fileName:     "photo.unknown",
			declaredMIME: "image/webp",
			expected:     CategoryImage,
			ok:           true,
		},
		{
			name:         "扩展名大小写不敏感",
			fileName:     "CLIP.MP4",
			declaredMIME: "",
			expected:     CategoryVideo,
			ok:           true,
		},
		{
			name:         "文档类",
			fileName:     "readme.md",
			declaredMIME: "text/markdown",
			expected:     CategoryDocument,
			ok:           true,
		},
		{
			name:         "音频类",
			fileName:     "track.flac",
			declaredMIME: "audio/flac",
			expected:     CategoryAudio,
			ok:           true,
		},
		{
			name:         "无法归类",
			fileName:     "data.xyz",
			declaredMIME: "application/x-custom",
			ok:           false,
		},
		{
			name:         "无扩展名无MIME",
			fileName:     "README",
			declaredMIME: "",
			ok:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.fileName, tt.declaredMIME)
			if ok != tt.ok {
				t.Fatalf("Classify(%q, %q) ok = %v, 期望 %v", tt.fileName, tt.declaredMIME, ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("Classify(%q, %q) = %v, 期望 %v", tt.fileName, tt.declaredMIME, got, tt.expected)
			}
		})
	}
}

func TestClassify_归类顺序固定(t *testing.T) {
	// 扩展名属于视频、声明 MIME 属于图片：按声明顺序先检查图片类，
	// 图片类的扩展名和 MIME 里先命中 MIME
	got, ok := Classify("clip.mp4", "image/png")
	if !ok {
		t.Fatal("期望归类成功")
	}
	if got != CategoryImage {
		t.Errorf("归类顺序应为声明顺序，得到 %v", got)
	}
}

func TestIsDangerous(t *testing.T) {
	for _, name := range []string{"a.exe", "b.SH", "c.php", "d.zip", "e.jar"} {
		if !IsDangerousExtension(name) {
			t.Errorf("%q 应命中危险扩展名", name)
		}
	}
	for _, name := range []string{"a.jpg", "b.png", "c.pdf", "noext"} {
		if IsDangerousExtension(name) {
			t.Errorf("%q 不应命中危险扩展名", name)
		}
	}
	if !IsDangerousMIME("application/x-msdownload") {
		t.Error("application/x-msdownload 应命中危险MIME")
	}
	if IsDangerousMIME("image/png") {
		t.Error("image/png 不应命中危险MIME")
	}
}

func TestCategoryDescriptions(t *testing.T) {
	descs := CategoryDescriptions()
	if len(descs) != len(categoryOrder) {
		t.Fatalf("描述数量 = %d, 期望 %d", len(descs), len(categoryOrder))
	}
	for i, d := range descs {
		if d == "" {
			t.Errorf("第 %d 个类别缺少描述", i)
		}
	}
}
