/*
 * @Description: custom_images 表的 SQL 仓储实现
 * @Author: 青崖
 * @Date: 2026-04-23 15:08:46
 * @LastEditTime: 2026-08-23 21:33:17
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

type customImageRepo struct {
	base
}

// NewCustomImageRepository 创建自定义页面图片仓储。
func NewCustomImageRepository(db *sql.DB, dialect database.Dialect) repository.CustomImageRepository {
	return &customImageRepo{base{db: db, dialect: dialect}}
}

func (r *customImageRepo) FindReferencedKeys(ctx context.Context, objectKeys []string) (map[string]uint, error) {
	return r.findReferencedKeys(ctx, "custom_images", objectKeys)
}

func (r *customImageRepo) Create(ctx context.Context, img *model.CustomImage) error {
	img.CreatedAt = time.Now()

	if r.dialect == database.DialectPostgres {
		query := `INSERT INTO custom_images (created_at, page, bucket, object_key, size)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`
		err := r.db.QueryRowContext(ctx, query,
			img.CreatedAt, img.Page, img.Bucket, img.ObjectKey, img.Size,
		).Scan(&img.ID)
		if err != nil {
			return fmt.Errorf("插入 custom_images 记录失败: %w", err)
		}
		return nil
	}

	query := `INSERT INTO custom_images (created_at, page, bucket, object_key, size)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		img.CreatedAt, img.Page, img.Bucket, img.ObjectKey, img.Size)
	if err != nil {
		return fmt.Errorf("插入 custom_images 记录失败: %w", err)
	}
	id, err := lastInsertID(res)
	if err != nil {
		return fmt.Errorf("获取新插入的 custom_images 记录ID失败: %w", err)
	}
	img.ID = id
	return nil
}
