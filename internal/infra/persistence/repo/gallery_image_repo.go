/*
 * @Description: gallery_images 表的 SQL 仓储实现
 * @Author: 青崖
 * @Date: 2026-04-23 15:21:30
 * @LastEditTime: 2026-08-23 21:35:44
 * @LastEditors: 青崖
 */
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/luoying-studio/luoying-app/internal/infra/persistence/database"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/domain/repository"
)

type galleryImageRepo struct {
	base
}

// NewGalleryImageRepository 创建相册集图片仓储。
func NewGalleryImageRepository(db *sql.DB, dialect database.Dialect) repository.GalleryImageRepository {
	return &galleryImageRepo{base{db: db, dialect: dialect}}
}

func (r *galleryImageRepo) FindReferencedKeys(ctx context.Context, objectKeys []string) (map[string]uint, error) {
	return r.findReferencedKeys(ctx, "gallery_images", objectKeys)
}

func (r *galleryImageRepo) Create(ctx context.Context, img *model.GalleryImage) error {
	img.CreatedAt = time.Now()

	if r.dialect == database.DialectPostgres {
		query := `INSERT INTO gallery_images (created_at, gallery_id, position, bucket, object_key, size)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		err := r.db.QueryRowContext(ctx, query,
			img.CreatedAt, img.GalleryID, img.Position, img.Bucket, img.ObjectKey, img.Size,
		).Scan(&img.ID)
		if err != nil {
			return fmt.Errorf("插入 gallery_images 记录失败: %w", err)
		}
		return nil
	}

	query := `INSERT INTO gallery_images (created_at, gallery_id, position, bucket, object_key, size)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		img.CreatedAt, img.GalleryID, img.Position, img.Bucket, img.ObjectKey, img.Size)
	if err != nil {
		return fmt.Errorf("插入 gallery_images 记录失败: %w", err)
	}
	id, err := lastInsertID(res)
	if err != nil {
		return fmt.Errorf("获取新插入的 gallery_images 记录ID失败: %w", err)
	}
	img.ID = id
	return nil
}
