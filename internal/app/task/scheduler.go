/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-05-10 20:48:02
 * @LastEditTime: 2026-08-27 09:40:16
 * @LastEditors: 青崖
 */
package task

import (
	"log/slog"
	"os"

	"github.com/luoying-studio/luoying-app/pkg/config"
	"github.com/luoying-studio/luoying-app/pkg/service/dedup"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"

	"github.com/robfig/cron/v3"
)

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	cfg    *config.Config

	dedupSvc  dedup.IDedupService
	bucketSvc volume.IBucketService
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(cfg *config.Config, dedupSvc dedup.IDedupService, bucketSvc volume.IBucketService) *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:      c,
		logger:    logger,
		cfg:       cfg,
		dedupSvc:  dedupSvc,
		bucketSvc: bucketSvc,
	}
}

// RegisterJobs 在调度器中注册所有定义好的定时任务。
func (s *Scheduler) RegisterJobs() {
	s.logger.Info("Registering all periodic jobs...")

	// --- 任务: 夜间重复文件扫描 ---
	spec := s.cfg.GetString(config.KeyDedupScanCron)
	if spec == "" {
		spec = "0 0 4 * * *"
	}
	scanJob := NewDuplicateScanJob(s.dedupSvc, s.bucketSvc)
	if _, err := s.cron.AddJob(spec, scanJob); err != nil {
		s.logger.Error("Failed to add 'DuplicateScanJob'", slog.Any("error", err))
		os.Exit(1)
	}
	s.logger.Info("-> Successfully registered 'DuplicateScanJob'", "schedule", spec)

	s.logger.Info("All periodic jobs registered.")
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
