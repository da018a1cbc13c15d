/*
 * @Description: 引用解析器：批量反查对象是否被数据库记录引用
 * @Author: 青崖
 * @Date: 2026-04-26 10:15:42
 * @LastEditTime: 2026-08-26 16:08:11
 * @LastEditors: 青崖
 */
package dedup

import (
	"context"
	"fmt"
	"log"

	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/domain/repository"
	"github.com/luoying-studio/luoying-app/pkg/idgen"
)

// referenceTable 绑定一张引用表的名字、批量反查能力和公共ID的实体类型。
type referenceTable struct {
	name       string
	lookup     repository.ReferenceLookup
	entityType uint64
}

// Resolver 把扫描到的对象与三张引用表做批量比对。
type Resolver struct {
	// tables 的顺序即命中优先级：images → custom_images → gallery_images，
	// 同一对象键出现在多张表时只标注最先命中的那张。
	tables []referenceTable
}

// NewResolver 创建引用解析器。
func NewResolver(
	imageRepo repository.ImageRepository,
	customImageRepo repository.CustomImageRepository,
	galleryImageRepo repository.GalleryImageRepository,
) *Resolver {
	return &Resolver{
		tables: []referenceTable{
			{name: "images", lookup: imageRepo, entityType: idgen.EntityTypeImage},
			{name: "custom_images", lookup: customImageRepo, entityType: idgen.EntityTypeCustomImage},
			{name: "gallery_images", lookup: galleryImageRepo, entityType: idgen.EntityTypeGalleryImage},
		},
	}
}

// Annotate 为扫描结果里的每个对象补充引用标注。
// 先收集全部对象键，再对每张表各发一次 WHERE object_key IN (...) 查询，
// 绝不按对象逐行查询。已有标注的对象不会被后续表覆盖。
func (r *Resolver) Annotate(ctx context.Context, result *model.ScanResult) error {
	var objects []*model.StoredObject
	for _, g := range result.Groups {
		objects = append(objects, g.Objects...)
	}
	if len(objects) == 0 {
		return nil
	}

	keySet := make(map[string]struct{}, len(objects))
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if _, ok := keySet[obj.Key]; !ok {
			keySet[obj.Key] = struct{}{}
			keys = append(keys, obj.Key)
		}
	}

	referenced := 0
	for _, table := range r.tables {
		matches, err := table.lookup.FindReferencedKeys(ctx, keys)
		if err != nil {
			return fmt.Errorf("反查 %s 表失败: %w", table.name, err)
		}
		if len(matches) == 0 {
			continue
		}
		for _, obj := range objects {
			if obj.Reference != nil {
				continue
			}
			rowID, ok := matches[obj.Key]
			if !ok {
				continue
			}
			publicID, err := idgen.GeneratePublicID(rowID, table.entityType)
			if err != nil {
				return fmt.Errorf("为 %s 表第 %d 行生成公共ID失败: %w", table.name, rowID, err)
			}
			obj.Reference = &model.ReferenceAnnotation{
				Table:    table.name,
				RecordID: publicID,
			}
			referenced++
		}
	}

	log.Printf("[引用解析] 扫描 %s: %d 个对象中 %d 个被数据库引用", result.ScanID, len(objects), referenced)
	return nil
}
