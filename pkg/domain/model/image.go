/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-03-06 09:55:28
 * @LastEditTime: 2026-07-02 15:31:40
 * @LastEditors: 青崖
 */
package model

import "time"

// Image 是主图库图片的领域模型，对应 images 表。
type Image struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time

	Title     string // 展示标题
	Bucket    string // 所在存储桶
	ObjectKey string // 对象存储中的键
	Size      int64
	MimeType  string
}

// CustomImage 是自定义页面图片的领域模型，对应 custom_images 表。
type CustomImage struct {
	ID        uint
	CreatedAt time.Time

	Page      string // 挂载的页面标识
	Bucket    string
	ObjectKey string
	Size      int64
}

// GalleryImage 是相册集图片的领域模型，对应 gallery_images 表。
type GalleryImage struct {
	ID        uint
	CreatedAt time.Time

	GalleryID uint // 所属相册集
	Position  int  // 相册内排序
	Bucket    string
	ObjectKey string
	Size      int64
}
