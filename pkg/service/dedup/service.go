/*
 * @Description: 去重服务门面：两阶段“扫描→删除”协议与结果缓存
 * @Author: 青崖
 * @Date: 2026-04-27 14:22:51
 * @LastEditTime: 2026-08-26 19:10:44
 * @LastEditors: 青崖
 */
package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/service/utility"
)

// scanCacheKey 是扫描结果在缓存里的键。
func scanCacheKey(scanID string) string {
	return "dedup:scan:" + scanID
}

// IDedupService 定义了去重工作流对外的完整接口。
// 删除必须引用一次具体扫描的 ScanID（两阶段协议），
// 结果过期后只能重新扫描，防止基于陈旧视图做删除决策。
type IDedupService interface {
	// StartScan 对指定桶执行一次有时限的扫描并缓存结果。
	// buckets 为空时扫描所有已配置的桶。
	StartScan(ctx context.Context, buckets []string) (*model.ScanResult, error)

	// GetScan 取回一次已缓存的扫描结果，不存在或已过期返回 ErrScanNotFound。
	GetScan(ctx context.Context, scanID string) (*model.ScanResult, error)

	// SelectNonReferenced 在缓存的扫描结果中选出未被引用的对象ID。
	SelectNonReferenced(ctx context.Context, scanID, groupHash string) ([]string, error)

	// Delete 按选择删除对象并更新缓存的扫描结果。
	Delete(ctx context.Context, scanID string, selections []model.DeleteSelection) (*model.DeleteReport, error)
}

// Options 是去重服务的运行参数，来自配置文件的 [Dedup] 分区。
type Options struct {
	ScanTimeout time.Duration // 单次扫描的硬时限
	ResultTTL   time.Duration // 扫描结果的缓存时长
}

type dedupService struct {
	scanner  *Scanner
	resolver *Resolver
	engine   *Engine
	cacheSvc utility.CacheService
	opts     Options
}

// NewDedupService 组装完整的去重工作流。
func NewDedupService(scanner *Scanner, resolver *Resolver, engine *Engine, cacheSvc utility.CacheService, opts Options) IDedupService {
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = 10 * time.Minute
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = time.Hour
	}
	return &dedupService{
		scanner:  scanner,
		resolver: resolver,
		engine:   engine,
		cacheSvc: cacheSvc,
		opts:     opts,
	}
}

func (s *dedupService) StartScan(ctx context.Context, buckets []string) (*model.ScanResult, error) {
	scanCtx, cancel := context.WithTimeout(ctx, s.opts.ScanTimeout)
	defer cancel()

	result, err := s.scanner.Scan(scanCtx, buckets)
	if err != nil {
		return nil, err
	}

	// 引用解析必须在任何选择/删除之前完成，选择逻辑绝不使用未标注的数据
	if err := s.resolver.Annotate(scanCtx, result); err != nil {
		return nil, err
	}

	if err := s.storeResult(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *dedupService) GetScan(ctx context.Context, scanID string) (*model.ScanResult, error) {
	raw, err := s.cacheSvc.Get(ctx, scanCacheKey(scanID))
	if err != nil {
		return nil, fmt.Errorf("读取扫描结果缓存失败: %w", err)
	}
	if raw == "" {
		return nil, fmt.Errorf("扫描 %s: %w", scanID, constant.ErrScanNotFound)
	}

	var result model.ScanResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("解析扫描结果缓存失败: %w", err)
	}
	return &result, nil
}

func (s *dedupService) SelectNonReferenced(ctx context.Context, scanID, groupHash string) ([]string, error) {
	result, err := s.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}
	return s.engine.SelectNonReferenced(result, groupHash), nil
}

func (s *dedupService) Delete(ctx context.Context, scanID string, selections []model.DeleteSelection) (*model.DeleteReport, error) {
	result, err := s.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.DeleteObjects(ctx, result, selections)
	if err != nil {
		return nil, err
	}

	// 把已删除的对象从缓存结果里剔除，后续请求看到的视图与真实状态一致
	deleted := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		deleted[sel.ObjectID] = struct{}{}
	}
	for _, fail := range report.Failures {
		delete(deleted, fail.ObjectID)
	}
	s.pruneResult(result, deleted)

	if err := s.storeResult(ctx, result); err != nil {
		return nil, fmt.Errorf("更新扫描结果缓存失败: %w", err)
	}
	return report, nil
}

// pruneResult 从扫描结果中移除已删除的对象并重算浪费空间。
func (s *dedupService) pruneResult(result *model.ScanResult, deleted map[string]struct{}) {
	groups := result.Groups[:0]
	result.WastedBytes = 0
	for _, g := range result.Groups {
		objects := g.Objects[:0]
		for _, obj := range g.Objects {
			if _, ok := deleted[obj.ObjectID]; !ok {
				objects = append(objects, obj)
			}
		}
		g.Objects = objects
		if len(g.Objects) < 2 {
			continue
		}
		g.WastedBytes = int64(len(g.Objects)-1) * g.Objects[0].Size
		groups = append(groups, g)
		result.WastedBytes += g.WastedBytes
	}
	result.Groups = groups
}

func (s *dedupService) storeResult(ctx context.Context, result *model.ScanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化扫描结果失败: %w", err)
	}
	if err := s.cacheSvc.Set(ctx, scanCacheKey(result.ScanID), string(payload), s.opts.ResultTTL); err != nil {
		return fmt.Errorf("缓存扫描结果失败: %w", err)
	}
	return nil
}
