/*
 * @Description: 引用表的数据访问契约
 * @Author: 青崖
 * @Date: 2026-04-23 11:10:52
 * @LastEditTime: 2026-08-23 21:05:18
 * @LastEditors: 青崖
 */
package repository

import (
	"context"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"
)

// ReferenceLookup 是三张引用表共同的批量反查能力。
// 给定一批对象键，返回其中被本表引用的键到行主键ID的映射。
// 实现必须是一次 WHERE object_key IN (...) 的只读查询，
// 而不是对每个键发起单行查询。
type ReferenceLookup interface {
	FindReferencedKeys(ctx context.Context, objectKeys []string) (map[string]uint, error)
}

// ImageRepository 定义了主图库图片 (images 表) 的数据访问操作契约。
type ImageRepository interface {
	ReferenceLookup

	// Create 插入一条主图库图片记录。
	Create(ctx context.Context, img *model.Image) error

	// FindByID 按主键查找。
	FindByID(ctx context.Context, id uint) (*model.Image, error)
}

// CustomImageRepository 定义了自定义页面图片 (custom_images 表) 的数据访问契约。
type CustomImageRepository interface {
	ReferenceLookup

	Create(ctx context.Context, img *model.CustomImage) error
}

// GalleryImageRepository 定义了相册集图片 (gallery_images 表) 的数据访问契约。
type GalleryImageRepository interface {
	ReferenceLookup

	Create(ctx context.Context, img *model.GalleryImage) error
}
