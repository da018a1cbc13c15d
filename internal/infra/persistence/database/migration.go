/*
 * @Description: 启动时的表结构自举
 * @Author: 青崖
 * @Date: 2026-03-10 17:05:11
 * @LastEditTime: 2026-08-21 10:12:59
 * @LastEditors: 青崖
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// EnsureSchema 在启动时幂等地创建三张图片引用表。
// object_key 上有索引，重复文件扫描的引用反查全靠它。
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var pk, autoTime string
	switch dialect {
	case DialectMySQL:
		pk = "BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY"
		autoTime = "DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"
	case DialectPostgres:
		pk = "BIGSERIAL PRIMARY KEY"
		autoTime = "TIMESTAMPTZ NOT NULL DEFAULT NOW()"
	default: // sqlite
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
		autoTime = "DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS images (
			id %s,
			created_at %s,
			updated_at %s,
			title VARCHAR(255) NOT NULL DEFAULT '',
			bucket VARCHAR(64) NOT NULL,
			object_key VARCHAR(1024) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			mime_type VARCHAR(128) NOT NULL DEFAULT ''
		)`, pk, autoTime, autoTime),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS custom_images (
			id %s,
			created_at %s,
			page VARCHAR(128) NOT NULL,
			bucket VARCHAR(64) NOT NULL,
			object_key VARCHAR(1024) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0
		)`, pk, autoTime),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS gallery_images (
			id %s,
			created_at %s,
			gallery_id BIGINT NOT NULL DEFAULT 0,
			position INT NOT NULL DEFAULT 0,
			bucket VARCHAR(64) NOT NULL,
			object_key VARCHAR(1024) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0
		)`, pk, autoTime),
	}

	// MySQL 对带长度上限的 VARCHAR 索引有键长限制，这里统一用前缀长度。
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_images_object_key ON images (object_key)",
		"CREATE INDEX IF NOT EXISTS idx_custom_images_object_key ON custom_images (object_key)",
		"CREATE INDEX IF NOT EXISTS idx_gallery_images_object_key ON gallery_images (object_key)",
	}
	if dialect == DialectMySQL {
		indexes = []string{
			"CREATE INDEX idx_images_object_key ON images (object_key(255))",
			"CREATE INDEX idx_custom_images_object_key ON custom_images (object_key(255))",
			"CREATE INDEX idx_gallery_images_object_key ON gallery_images (object_key(255))",
		}
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// MySQL 没有 IF NOT EXISTS 的索引语法，重复创建报 1061，忽略即可
			if dialect == DialectMySQL {
				continue
			}
			return fmt.Errorf("建索引失败: %w", err)
		}
	}

	log.Println("✅ 数据库表结构检查完成")
	return nil
}
