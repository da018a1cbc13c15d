/*
 * @Description: 重复文件扫描器：全量列举、内容哈希、按哈希分组
 * @Author: 青崖
 * @Date: 2026-04-25 09:32:18
 * @LastEditTime: 2026-08-26 14:50:37
 * @LastEditors: 青崖
 */
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/luoying-studio/luoying-app/internal/infra/storage"
	"github.com/luoying-studio/luoying-app/pkg/constant"
	"github.com/luoying-studio/luoying-app/pkg/domain/model"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"

	"github.com/google/uuid"
)

// plainMD5 匹配未分片上传的 ETag：32 位十六进制即为内容 MD5。
// 带 "-" 的分片 ETag 不是内容哈希，必须回退到 GET + SHA-256。
var plainMD5 = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// Scanner 遍历若干存储桶并把内容相同的对象归为一组。
type Scanner struct {
	bucketSvc volume.IBucketService
	workers   int
}

// NewScanner 创建扫描器。workers 是哈希计算的并发上限，小于 1 时取 4。
func NewScanner(bucketSvc volume.IBucketService, workers int) *Scanner {
	if workers < 1 {
		workers = 4
	}
	return &Scanner{bucketSvc: bucketSvc, workers: workers}
}

// hashTask 是投给工作协程的单个待哈希对象。
type hashTask struct {
	policy   *model.StoragePolicy
	provider storage.IStorageProvider
	info     storage.ObjectInfo
	bucket   string
}

// hashOutcome 是单个对象的哈希结果，经由汇总通道交给唯一的聚合协程。
type hashOutcome struct {
	object  *model.StoredObject
	skipped *model.SkippedObject
}

// Scan 对指定的桶做一次完整扫描。
// 列举失败（存储不可达）让整次扫描失败并返回 ErrScanFailed；
// 单个对象取哈希失败只记入 Skipped，不阻断其余对象。
// 取消与超时通过 ctx 协作式传入。
func (s *Scanner) Scan(ctx context.Context, bucketNames []string) (*model.ScanResult, error) {
	result := &model.ScanResult{
		ScanID:    uuid.NewString(),
		StartedAt: time.Now(),
		Buckets:   bucketNames,
	}

	// 先串行完成全部列举：任何一个桶列举失败都立刻终止，
	// 不让操作员基于半个桶的视图做删除决策。
	var tasks []hashTask
	for _, bucket := range bucketNames {
		policy, provider, err := s.bucketSvc.GetProvider(bucket)
		if err != nil {
			return nil, err
		}
		infos, err := provider.ListAllObjects(ctx, policy)
		if err != nil {
			return nil, fmt.Errorf("%w: 桶 %s: %v", constant.ErrScanFailed, bucket, err)
		}
		for _, info := range infos {
			tasks = append(tasks, hashTask{policy: policy, provider: provider, info: info, bucket: bucket})
		}
	}
	result.TotalObjects = len(tasks)
	log.Printf("[重复扫描] %s 开始: 桶 %v, 对象总数 %d, 并发 %d", result.ScanID, bucketNames, len(tasks), s.workers)

	taskCh := make(chan hashTask)
	outCh := make(chan hashOutcome)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				outCh <- s.hashOne(ctx, task)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// 投递协程单独跑，遇到取消就停止投递，让工作协程自然退出
	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	// 唯一的聚合写入方：哈希到对象列表的 map 只在这里被修改
	byHash := make(map[string][]*model.StoredObject)
	for outcome := range outCh {
		if outcome.skipped != nil {
			result.Skipped = append(result.Skipped, *outcome.skipped)
			continue
		}
		obj := outcome.object
		byHash[obj.Hash] = append(byHash[obj.Hash], obj)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: 扫描被取消或超时: %v", constant.ErrScanFailed, err)
	}

	// 只保留成员数 >= 2 的组
	for hash, objects := range byHash {
		if len(objects) < 2 {
			continue
		}
		group := &model.DuplicateGroup{
			Hash:        hash,
			Objects:     objects,
			WastedBytes: int64(len(objects)-1) * objects[0].Size,
		}
		result.Groups = append(result.Groups, group)
		result.WastedBytes += group.WastedBytes
	}

	result.FinishedAt = time.Now()
	log.Printf("[重复扫描] %s 完成: 重复组 %d, 浪费空间 %d 字节, 跳过 %d 个对象",
		result.ScanID, len(result.Groups), result.WastedBytes, len(result.Skipped))
	return result, nil
}

// hashOne 取单个对象的内容哈希。
// 存储端给出普通 MD5 ETag 时直接采信（"md5:" 前缀）；
// 否则 GET 全文计算 SHA-256（"sha256:" 前缀）。前缀保证两种算法的哈希互不碰撞。
func (s *Scanner) hashOne(ctx context.Context, task hashTask) hashOutcome {
	obj := &model.StoredObject{
		ObjectID:     uuid.NewString(),
		Bucket:       task.bucket,
		Key:          task.info.Key,
		FileName:     path.Base(task.info.Key),
		Size:         task.info.Size,
		LastModified: task.info.LastModified,
	}

	if plainMD5.MatchString(task.info.ETag) {
		obj.Hash = "md5:" + strings.ToLower(task.info.ETag)
		return hashOutcome{object: obj}
	}

	reader, err := task.provider.Get(ctx, task.policy, task.info.Key)
	if err != nil {
		log.Printf("[重复扫描] 跳过 %s/%s: 读取失败: %v", task.bucket, task.info.Key, err)
		return hashOutcome{skipped: &model.SkippedObject{
			Bucket: task.bucket,
			Key:    task.info.Key,
			Reason: fmt.Sprintf("读取失败: %v", err),
		}}
	}
	defer reader.Close()

	h := sha256.New()
	if _, err := io.Copy(h, reader); err != nil {
		log.Printf("[重复扫描] 跳过 %s/%s: 计算哈希失败: %v", task.bucket, task.info.Key, err)
		return hashOutcome{skipped: &model.SkippedObject{
			Bucket: task.bucket,
			Key:    task.info.Key,
			Reason: fmt.Sprintf("计算哈希失败: %v", err),
		}}
	}
	obj.Hash = "sha256:" + hex.EncodeToString(h.Sum(nil))
	return hashOutcome{object: obj}
}
