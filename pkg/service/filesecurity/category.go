/*
 * @Description: 文件类别的封闭枚举与归类逻辑
 * @Author: 青崖
 * @Date: 2026-03-14 09:30:25
 * @LastEditTime: 2026-08-24 10:11:48
 * @LastEditors: 青崖
 */
package filesecurity

import (
	"path/filepath"
	"strings"

	"github.com/luoying-studio/luoying-app/pkg/constant"
)

// FileCategory 是可接受上传的文件类别，封闭枚举。
// 新增类别必须同时补齐 categoryDefs 表，归类顺序就是这里的声明顺序。
type FileCategory int

const (
	CategoryImage FileCategory = iota
	CategoryDocument
	CategoryVideo
	CategoryAudio
)

// String 返回类别的规范名，用于 ValidationResult.DetectedType。
func (c FileCategory) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryDocument:
		return "document"
	case CategoryVideo:
		return "video"
	case CategoryAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// CategoryDef 是单个类别的静态准入数据，进程启动后只读。
type CategoryDef struct {
	Extensions  map[string]struct{} // 小写、不带点
	MIMETypes   map[string]struct{}
	MaxSize     int64  // 字节
	Description string // 面向管理员的中文描述
	Buckets     map[string]struct{}
}

const (
	mb int64 = 1 << 20
)

// categoryOrder 是归类时的固定遍历顺序（即声明顺序）。
var categoryOrder = []FileCategory{CategoryImage, CategoryDocument, CategoryVideo, CategoryAudio}

// categoryDefs 是各类别的静态配置。
// 注意 Document 不含 OOXML 格式（docx/xlsx）：它们是 ZIP 容器，
// 文件头 504b0304 会命中可疑二进制内容检查。
var categoryDefs = map[FileCategory]*CategoryDef{
	CategoryImage: {
		Extensions:  setOf("jpg", "jpeg", "png", "gif", "webp", "bmp", "avif"),
		MIMETypes:   setOf("image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/avif"),
		MaxSize:     50 * mb,
		Description: "图片 (jpg/png/gif/webp/bmp/avif，不超过 50MB)",
		Buckets:     setOf(constant.BucketImage, constant.BucketCustom, constant.BucketGallery, constant.BucketFiles),
	},
	CategoryDocument: {
		Extensions:  setOf("pdf", "txt", "md", "doc"),
		MIMETypes:   setOf("application/pdf", "text/plain", "text/markdown", "application/msword"),
		MaxSize:     20 * mb,
		Description: "文档 (pdf/txt/md/doc，不超过 20MB)",
		Buckets:     setOf(constant.BucketFiles),
	},
	CategoryVideo: {
		Extensions:  setOf("mp4", "mov", "webm", "mkv"),
		MIMETypes:   setOf("video/mp4", "video/quicktime", "video/webm", "video/x-matroska"),
		MaxSize:     500 * mb,
		Description: "视频 (mp4/mov/webm/mkv，不超过 500MB)",
		Buckets:     setOf(constant.BucketVideo, constant.BucketFiles),
	},
	CategoryAudio: {
		Extensions:  setOf("mp3", "wav", "ogg", "flac"),
		MIMETypes:   setOf("audio/mpeg", "audio/wav", "audio/ogg", "audio/flac"),
		MaxSize:     100 * mb,
		Description: "音频 (mp3/wav/ogg/flac，不超过 100MB)",
		Buckets:     setOf(constant.BucketFiles),
	},
}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Def 返回类别的静态配置。
func (c FileCategory) Def() *CategoryDef {
	return categoryDefs[c]
}

// CategoryDescriptions 返回所有类别的描述列表，按声明顺序，用于"不支持的类型"错误提示。
func CategoryDescriptions() []string {
	descs := make([]string, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		descs = append(descs, categoryDefs[c].Description)
	}
	return descs
}

// extOf 取文件名的小写扩展名，不带点。
func extOf(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}

// Classify 按声明顺序归类：扩展名或声明 MIME 命中任一类别即返回。
// ok 为 false 表示无法归入任何类别，由准入策略决定是否放行。
func Classify(fileName, declaredMIME string) (FileCategory, bool) {
	ext := extOf(fileName)
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))

	for _, c := range categoryOrder {
		def := categoryDefs[c]
		if _, ok := def.Extensions[ext]; ok {
			return c, true
		}
		if _, ok := def.MIMETypes[mime]; ok {
			return c, true
		}
	}
	return 0, false
}
