package filesecurity

import (
	"strings"
	"testing"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"
)

func defaultLimits() model.SiteLimits {
	return model.SiteLimits{
		DefaultMaxSize: 50 * mb,
		BucketMaxSize:  map[string]int64{"image": 50 * mb},
	}
}

func TestValidate_危险扩展名优先于类别归类(t *testing.T) {
	// .php 本不属于任何类别，这里用声明 MIME 让它归入图片类，
	// 拒绝名单依然必须生效
	candidate := &model.UploadCandidate{
		Name:         "avatar.php",
		DeclaredMIME: "image/png",
		Size:         1024,
		Head:         pngHead,
	}
	result := Validate(candidate, model.ValidateOptions{Bucket: "image"}, defaultLimits())

	if result.IsValid {
		t.Fatal("危险扩展名必须导致校验失败")
	}
	if !containsSubstring(result.Errors, "危险的文件扩展名") {
		t.Errorf("缺少危险扩展名错误: %v", result.Errors)
	}
}

func TestValidate_类别大小边界精确(t *testing.T) {
	limits := model.SiteLimits{DefaultMaxSize: 1000 * mb}
	def := CategoryImage.Def()

	for _, tt := range []struct {
		name  string
		size  int64
		valid bool
	}{
		{"恰好等于上限", def.MaxSize, true},
		{"超出上限一字节", def.MaxSize + 1, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			candidate := &model.UploadCandidate{
				Name:         "big.png",
				DeclaredMIME: "image/png",
				Size:         tt.size,
				Head:         pngHead,
			}
			result := Validate(candidate, model.ValidateOptions{Bucket: "image"}, limits)
			if result.IsValid != tt.valid {
				t.Errorf("size=%d: IsValid = %v, 期望 %v (errs: %v)", tt.size, result.IsValid, tt.valid, result.Errors)
			}
		})
	}
}

func TestValidate_错误全部收集不短路(t *testing.T) {
	candidate := &model.UploadCandidate{
		Name:         "bad.exe",
		DeclaredMIME: "application/x-msdownload",
		Size:         0,
		Head:         peHead,
	}
	result := Validate(candidate, model.ValidateOptions{Bucket: "image"}, defaultLimits())

	if result.IsValid {
		t.Fatal("期望校验失败")
	}
	// 危险扩展名 + 危险MIME + 可疑内容 + 未归类 + 空文件，至少 5 条
	if len(result.Errors) < 5 {
		t.Errorf("期望收集到所有错误，实际只有 %d 条: %v", len(result.Errors), result.Errors)
	}
}

func TestValidate_桶白名单检查(t *testing.T) {
	candidate := &model.UploadCandidate{
		Name:         "notes.pdf",
		DeclaredMIME: "application/pdf",
		Size:         1024,
		Head:         []byte("%PDF-1.7"),
	}
	result := Validate(candidate, model.ValidateOptions{Bucket: "image"}, defaultLimits())

	if result.IsValid {
		t.Fatal("文档类别不允许进入 image 桶")
	}
	if !containsSubstring(result.Errors, "不允许上传到存储桶") {
		t.Errorf("缺少桶白名单错误: %v", result.Errors)
	}
}

func TestValidate_AllowAnyType放行未识别类型(t *testing.T) {
	candidate := &model.UploadCandidate{
		Name:         "data.xyz",
		DeclaredMIME: "application/x-custom",
		Size:         1024,
	}

	strict := Validate(candidate, model.ValidateOptions{Bucket: "files"}, defaultLimits())
	if strict.IsValid {
		t.Error("默认情况下未识别类型应被拒绝")
	}

	loose := Validate(candidate, model.ValidateOptions{Bucket: "files", AllowAnyType: true}, defaultLimits())
	if !loose.IsValid {
		t.Errorf("AllowAnyType 应放行未识别类型: %v", loose.Errors)
	}
	if loose.DetectedType != "" {
		t.Errorf("未识别类型的 DetectedType 应为空，实际 %q", loose.DetectedType)
	}
}

func TestValidate_自定义回调panic转为错误(t *testing.T) {
	candidate := &model.UploadCandidate{
		Name:         "photo.png",
		DeclaredMIME: "image/png",
		Size:         1024,
		Head:         pngHead,
	}
	opts := model.ValidateOptions{
		Bucket: "image",
		CustomCheck: func(c *model.UploadCandidate) []string {
			panic("boom")
		},
	}
	result := Validate(candidate, opts, defaultLimits())

	if result.IsValid {
		t.Fatal("回调 panic 必须转为校验错误")
	}
	if !containsSubstring(result.Errors, "自定义校验执行失败") {
		t.Errorf("缺少自定义校验失败错误: %v", result.Errors)
	}
}

func TestValidate_不变式IsValid等于无错误(t *testing.T) {
	candidates := []*model.UploadCandidate{
		{Name: "ok.png", DeclaredMIME: "image/png", Size: 1024, Head: pngHead},
		{Name: "bad.exe", DeclaredMIME: "application/x-msdownload", Size: 0},
		{Name: strings.Repeat("n", 300) + ".jpg", DeclaredMIME: "image/jpeg", Size: 1, Head: jpegHead},
	}
	for _, c := range candidates {
		result := Validate(c, model.ValidateOptions{Bucket: "image"}, defaultLimits())
		if result.IsValid != (len(result.Errors) == 0) {
			t.Errorf("%s: IsValid=%v 与 len(Errors)=%d 矛盾", c.Name, result.IsValid, len(result.Errors))
		}
	}
}

func TestValidate_场景A_清洗后的PNG被接受(t *testing.T) {
	candidate := &model.UploadCandidate{
		Name:         "My Photo!!.PNG",
		DeclaredMIME: "image/png",
		Size:         2 * mb,
		Head:         pngHead,
	}
	limits := model.SiteLimits{BucketMaxSize: map[string]int64{"image": 50 * mb}}
	result := Validate(candidate, model.ValidateOptions{Bucket: "image"}, limits)

	if !result.IsValid {
		t.Fatalf("期望通过校验，错误: %v", result.Errors)
	}
	if result.SanitizedName != "my_photo.png" {
		t.Errorf("SanitizedName = %q, 期望 %q", result.SanitizedName, "my_photo.png")
	}
	if result.DetectedType != "image" {
		t.Errorf("DetectedType = %q, 期望 %q", result.DetectedType, "image")
	}
	if len(result.Warnings) == 0 {
		t.Error("文件名被清洗时应产生提示")
	}
}

func TestValidate_场景B_改名的PE文件被内容检查拦截(t *testing.T) {
	candidate := &model.UploadCandidate{
		Name:         "payload.jpg",
		DeclaredMIME: "image/jpeg",
		Size:         512 * 1024,
		Head:         peHead,
	}
	result := Validate(candidate, model.ValidateOptions{Bucket: "image"}, defaultLimits())

	if result.IsValid {
		t.Fatal("PE 内容必须被拦截")
	}
	// .jpg 扩展名不在拒绝名单里，拦截必须来自内容检查
	if containsSubstring(result.Errors, "危险的文件扩展名") {
		t.Errorf(".jpg 不应触发扩展名拒绝: %v", result.Errors)
	}
	if !containsSubstring(result.Errors, "不符") {
		t.Errorf("缺少内容与声明不符错误: %v", result.Errors)
	}
	if !containsSubstring(result.Errors, "可疑") {
		t.Errorf("缺少可疑二进制内容错误: %v", result.Errors)
	}
}
