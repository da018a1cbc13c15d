/*
 * @Description: 去重选择与删除引擎
 * @Author: 青崖
 * @Date: 2026-04-27 09:50:08
 * @LastEditTime: 2026-08-26 17:35:29
 * @LastEditors: 青崖
 */
package dedup

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"
)

// deleteConcurrency 是批量删除时对存储端的并发上限。
const deleteConcurrency = 4

// Engine 基于某次扫描的结果执行选择与删除。
type Engine struct {
	bucketSvc volume.IBucketService
}

// NewEngine 创建删除引擎。
func NewEngine(bucketSvc volume.IBucketService) *Engine {
	return &Engine{bucketSvc: bucketSvc}
}

// SelectNonReferenced 返回未被任何数据库记录引用的对象ID。
// groupHash 非空时只在该组内选择，否则跨全部组。
// 被引用的对象永远不会出现在返回值里，这是批量清理路径的安全底线。
func (e *Engine) SelectNonReferenced(result *model.ScanResult, groupHash string) []string {
	var ids []string
	for _, g := range result.Groups {
		if groupHash != "" && g.Hash != groupHash {
			continue
		}
		for _, obj := range g.Objects {
			if obj.Reference == nil {
				ids = append(ids, obj.ObjectID)
			}
		}
	}
	return ids
}

// DeleteObjects 按操作员的选择删除对象。
//
// 先整体预检：选择里有扫描结果之外的对象ID，或者有被引用却未携带 Force
// 标记的对象，整个批次直接拒绝，一个对象都不删（策略违规，不是删除失败）。
// 预检通过后逐个删除：删除前重新确认对象仍然存在（扫描结果可能已经过时），
// 单个对象的失败记入 Failures，不中断其余对象。删除不是事务性的。
func (e *Engine) DeleteObjects(ctx context.Context, result *model.ScanResult, selections []model.DeleteSelection) (*model.DeleteReport, error) {
	targets := make([]*model.StoredObject, 0, len(selections))
	for _, sel := range selections {
		obj := result.FindObject(sel.ObjectID)
		if obj == nil {
			return nil, fmt.Errorf("对象 %s 不在扫描 %s 的结果中: %w", sel.ObjectID, result.ScanID, constant.ErrNotFound)
		}
		if obj.Reference != nil && !sel.Force {
			return nil, fmt.Errorf("对象 %s (键 %s, 被 %s 表引用): %w",
				sel.ObjectID, obj.Key, obj.Reference.Table, constant.ErrObjectReferenced)
		}
		targets = append(targets, obj)
	}

	report := &model.DeleteReport{}
	var mu sync.Mutex

	sem := make(chan struct{}, deleteConcurrency)
	var wg sync.WaitGroup
	for _, obj := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(obj *model.StoredObject) {
			defer wg.Done()
			defer func() { <-sem }()

			failReason := e.deleteOne(ctx, obj)

			mu.Lock()
			defer mu.Unlock()
			if failReason == "" {
				report.DeletedCount++
			} else {
				report.Failures = append(report.Failures, model.DeleteFailure{
					ObjectID: obj.ObjectID,
					Key:      obj.Key,
					Reason:   failReason,
				})
			}
		}(obj)
	}
	wg.Wait()

	log.Printf("[去重删除] 扫描 %s: 选择 %d 个, 成功删除 %d 个, 失败 %d 个",
		result.ScanID, len(targets), report.DeletedCount, len(report.Failures))
	return report, nil
}

// deleteOne 删除单个对象，返回空串表示成功，否则为失败原因。
func (e *Engine) deleteOne(ctx context.Context, obj *model.StoredObject) string {
	if err := ctx.Err(); err != nil {
		return fmt.Sprintf("操作被取消: %v", err)
	}

	policy, provider, err := e.bucketSvc.GetProvider(obj.Bucket)
	if err != nil {
		return fmt.Sprintf("解析存储桶失败: %v", err)
	}

	// 扫描结果可能落后于真实状态，删除前重新确认对象仍然存在
	exists, err := provider.IsExist(ctx, policy, obj.Key)
	if err != nil {
		return fmt.Sprintf("确认对象存在性失败: %v", err)
	}
	if !exists {
		return "对象已不存在（可能已被其他操作删除）"
	}

	if err := provider.DeleteSingle(ctx, policy, obj.Key); err != nil {
		return fmt.Sprintf("删除失败: %v", err)
	}
	return ""
}
