/*
 * @Description: images 表的 SQL 仓储实现
 * @Author: 青崖
 * @Date: 2026-04-23 14:40:19
 * @LastEditTime: 2026-08-23 21:30:02
 * @LastEditors: 青崖
 */
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/luoying-studio/luoying-app/internal/infra/persistence/database"
	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/domain/repository"
)

type imageRepo struct {
	base
}

// NewImageRepository 创建主图库图片仓储。
func NewImageRepository(db *sql.DB, dialect database.Dialect) repository.ImageRepository {
	return &imageRepo{base{db: db, dialect: dialect}}
}

func (r *imageRepo) FindReferencedKeys(ctx context.Context, objectKeys []string) (map[string]uint, error) {
	return r.findReferencedKeys(ctx, "images", objectKeys)
}

func (r *imageRepo) Create(ctx context.Context, img *model.Image) error {
	now := time.Now()
	img.CreatedAt = now
	img.UpdatedAt = now

	if r.dialect == database.DialectPostgres {
		query := `INSERT INTO images (created_at, updated_at, title, bucket, object_key, size, mime_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		err := r.db.QueryRowContext(ctx, query,
			img.CreatedAt, img.UpdatedAt, img.Title, img.Bucket, img.ObjectKey, img.Size, img.MimeType,
		).Scan(&img.ID)
		if err != nil {
			return fmt.Errorf("插入 images 记录失败: %w", err)
		}
		return nil
	}

	query := `INSERT INTO images (created_at, updated_at, title, bucket, object_key, size, mime_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		img.CreatedAt, img.UpdatedAt, img.Title, img.Bucket, img.ObjectKey, img.Size, img.MimeType)
	if err != nil {
		return fmt.Errorf("插入 images 记录失败: %w", err)
	}
	id, err := lastInsertID(res)
	if err != nil {
		return fmt.Errorf("获取新插入的 images 记录ID失败: %w", err)
	}
	img.ID = id
	return nil
}

func (r *imageRepo) FindByID(ctx context.Context, id uint) (*model.Image, error) {
	query := `SELECT id, created_at, updated_at, title, bucket, object_key, size, mime_type
		FROM images WHERE id = ?`
	if r.dialect == database.DialectPostgres {
		query = `SELECT id, created_at, updated_at, title, bucket, object_key, size, mime_type
		FROM images WHERE id = $1`
	}

	img := &model.Image{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&img.ID, &img.CreatedAt, &img.UpdatedAt, &img.Title, &img.Bucket, &img.ObjectKey, &img.Size, &img.MimeType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, constant.ErrNotFound
		}
		return nil, fmt.Errorf("查询 images 记录失败: %w", err)
	}
	return img, nil
}
