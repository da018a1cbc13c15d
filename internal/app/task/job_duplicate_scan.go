/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-05-11 10:32:48
 * @LastEditTime: 2026-08-27 09:18:35
 * @LastEditors: 青崖
 */
// internal/app/task/job_duplicate_scan.go
package task

import (
	"context"
	"log"

	"github.com/luoying-studio/luoying-app/pkg/service/dedup"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"
)

// DuplicateScanJob 每晚对所有已配置的存储桶做一次重复文件扫描，
// 结果进入缓存，管理员白天可以直接基于夜间扫描做清理。
type DuplicateScanJob struct {
	dedupSvc  dedup.IDedupService
	bucketSvc volume.IBucketService
}

// NewDuplicateScanJob 是任务的构造函数
func NewDuplicateScanJob(dedupSvc dedup.IDedupService, bucketSvc volume.IBucketService) *DuplicateScanJob {
	return &DuplicateScanJob{
		dedupSvc:  dedupSvc,
		bucketSvc: bucketSvc,
	}
}

// Run 是 Job 接口要求实现的方法
func (j *DuplicateScanJob) Run() {
	buckets := j.bucketSvc.Buckets()
	result, err := j.dedupSvc.StartScan(context.Background(), buckets)
	if err != nil {
		// 日志由 wrapper 统一处理，这里只处理错误本身
		log.Printf("任务 '%s' 在执行业务逻辑时捕获到错误: %v", j.Name(), err)
		return
	}
	log.Printf("任务 '%s' 业务逻辑执行完毕: 扫描 %s, 对象 %d 个, 重复组 %d 个, 浪费空间 %d 字节, 跳过 %d 个。",
		j.Name(), result.ScanID, result.TotalObjects, len(result.Groups), result.WastedBytes, len(result.Skipped))
}

// Name 方法让日志包装器可以打印出更有意义的任务名
func (j *DuplicateScanJob) Name() string {
	return "DuplicateScanJob"
}
