/*
 * @Description: SQL 仓储的公共基础设施
 * @Author: 青崖
 * @Date: 2026-04-23 14:02:33
 * @LastEditTime: 2026-08-23 21:18:40
 * @LastEditors: 青崖
 */
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/luoying-studio/luoying-app/internal/infra/persistence/database"
)

// base 持有连接池与方言，三个仓储共用。
type base struct {
	db      *sql.DB
	dialect database.Dialect
}

// placeholders 按方言生成 n 个占位符，从 start 开始编号（仅 Postgres 关心编号）。
func (b *base) placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		if b.dialect == database.DialectPostgres {
			parts[i] = fmt.Sprintf("$%d", start+i)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// findReferencedKeys 是三张引用表共用的批量反查实现：
// 一次 WHERE object_key IN (...) 查询，返回被引用的键到行ID的映射。
// 同一个键被多行引用时保留第一行的ID，调用方只关心"是否被引用"。
func (b *base) findReferencedKeys(ctx context.Context, table string, objectKeys []string) (map[string]uint, error) {
	if len(objectKeys) == 0 {
		return map[string]uint{}, nil
	}

	query := fmt.Sprintf("SELECT id, object_key FROM %s WHERE object_key IN (%s)",
		table, b.placeholders(1, len(objectKeys)))
	args := make([]any, len(objectKeys))
	for i, k := range objectKeys {
		args[i] = k
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询 %s 表的引用记录失败: %w", table, err)
	}
	defer rows.Close()

	result := make(map[string]uint)
	for rows.Next() {
		var id uint
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("扫描 %s 表的引用记录失败: %w", table, err)
		}
		if _, ok := result[key]; !ok {
			result[key] = id
		}
	}
	return result, rows.Err()
}

// lastInsertID 兼容 Postgres 不支持 LastInsertId 的情况：
// Postgres 下仓储用 RETURNING id 自行取值，不走这里。
func lastInsertID(res sql.Result) (uint, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
