/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-05-26 09:12:18
 * @LastEditTime: 2026-08-27 17:46:05
 * @LastEditors: 青崖
 */
// luoying-app/cmd/server/app.go
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luoying-studio/luoying-app/internal/app/middleware"
	"github.com/luoying-studio/luoying-app/internal/app/task"
	"github.com/luoying-studio/luoying-app/internal/infra/persistence/database"
	"github.com/luoying-studio/luoying-app/internal/infra/persistence/repo"
	"github.com/luoying-studio/luoying-app/internal/infra/router"
	"github.com/luoying-studio/luoying-app/pkg/config"
	"github.com/luoying-studio/luoying-app/pkg/domain/repository"
	auth_handler "github.com/luoying-studio/luoying-app/pkg/handler/auth"
	dedup_handler "github.com/luoying-studio/luoying-app/pkg/handler/dedup"
	upload_handler "github.com/luoying-studio/luoying-app/pkg/handler/upload"
	"github.com/luoying-studio/luoying-app/pkg/idgen"
	"github.com/luoying-studio/luoying-app/pkg/service/dedup"
	"github.com/luoying-studio/luoying-app/pkg/service/utility"
	"github.com/luoying-studio/luoying-app/pkg/service/volume"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg       *config.Config
	engine    *gin.Engine
	scheduler *task.Scheduler
	sqlDB     *sql.DB

	bucketSvc volume.IBucketService
	dedupSvc  dedup.IDedupService
	cacheSvc  utility.CacheService
	imageRepo repository.ImageRepository
	mw        *middleware.Middleware
}

func (a *App) PrintBanner() {
	banner := `

      ██╗     ██╗   ██╗ ██████╗ ██╗   ██╗██╗███╗   ██╗ ██████╗
      ██║     ██║   ██║██╔═══██╗╚██╗ ██╔╝██║████╗  ██║██╔════╝
      ██║     ██║   ██║██║   ██║ ╚████╔╝ ██║██╔██╗ ██║██║  ███╗
      ██║     ██║   ██║██║   ██║  ╚██╔╝  ██║██║╚██╗██║██║   ██║
      ███████╗╚██████╔╝╚██████╔╝   ██║   ██║██║ ╚████║╚██████╔╝
      ╚══════╝ ╚═════╝  ╚═════╝    ╚═╝   ╚═╝╚═╝  ╚═══╝ ╚═════╝

`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Println(" LuoYing App - 上传安全与存储去重服务")
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, dialect, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}
	if err := database.EnsureSchema(context.Background(), sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("初始化数据库表结构失败: %w", err)
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("redis 初始化失败: %w", err)
	}

	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	// --- Phase 3: 初始化 ID 编码器 ---
	if err := idgen.InitSqidsEncoder(); err != nil {
		return nil, cleanup, fmt.Errorf("初始化 ID 编码器失败: %w", err)
	}
	log.Println("✅ ID 编码器初始化成功")

	// --- Phase 4: 初始化数据仓库层 ---
	imageRepo := repo.NewImageRepository(sqlDB, dialect)
	customImageRepo := repo.NewCustomImageRepository(sqlDB, dialect)
	galleryImageRepo := repo.NewGalleryImageRepository(sqlDB, dialect)

	// --- Phase 5: 初始化业务逻辑层 ---
	// 使用智能缓存工厂，自动选择 Redis 或内存缓存
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient)

	bucketSvc, err := volume.NewBucketService(cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("初始化存储桶服务失败: %w", err)
	}

	scanner := dedup.NewScanner(bucketSvc, cfg.GetInt(config.KeyDedupScanWorkers))
	resolver := dedup.NewResolver(imageRepo, customImageRepo, galleryImageRepo)
	engine := dedup.NewEngine(bucketSvc)
	dedupSvc := dedup.NewDedupService(scanner, resolver, engine, cacheSvc, dedup.Options{
		ScanTimeout: time.Duration(cfg.GetInt(config.KeyDedupScanTimeout)) * time.Minute,
		ResultTTL:   time.Duration(cfg.GetInt(config.KeyDedupResultTTL)) * time.Minute,
	})

	// 初始化任务调度器（夜间全量重复扫描）
	scheduler := task.NewScheduler(cfg, dedupSvc, bucketSvc)

	// --- Phase 6: 初始化表现层 (Handlers) ---
	mw := middleware.NewMiddleware([]byte(cfg.GetString(config.KeyJWTSecret)))
	authHandler := auth_handler.NewAuthHandler(cfg)
	uploadHandler := upload_handler.NewUploadHandler(bucketSvc, imageRepo)
	dedupHandler := dedup_handler.NewDedupHandler(dedupSvc, bucketSvc)

	// --- Phase 7: 初始化路由 ---
	appRouter := router.NewRouter(authHandler, uploadHandler, dedupHandler, mw)

	// --- Phase 8: 配置 Gin 引擎 ---
	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
		log.Println("运行模式: Debug (Gin 将打印详细路由日志)")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("运行模式: Release (Gin 启动日志已禁用)")
	}

	ginEngine := gin.Default()
	if err := ginEngine.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		return nil, cleanup, fmt.Errorf("设置信任代理失败: %w", err)
	}
	ginEngine.ForwardedByClientIP = true
	appRouter.Setup(ginEngine)

	app := &App{
		cfg:       cfg,
		engine:    ginEngine,
		scheduler: scheduler,
		sqlDB:     sqlDB,
		bucketSvc: bucketSvc,
		dedupSvc:  dedupSvc,
		cacheSvc:  cacheSvc,
		imageRepo: imageRepo,
		mw:        mw,
	}
	return app, cleanup, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) DB() *sql.DB {
	return a.sqlDB
}

func (a *App) BucketService() volume.IBucketService {
	return a.bucketSvc
}

func (a *App) DedupService() dedup.IDedupService {
	return a.dedupSvc
}

func (a *App) CacheService() utility.CacheService {
	return a.cacheSvc
}

func (a *App) ImageRepository() repository.ImageRepository {
	return a.imageRepo
}

func (a *App) Middleware() *middleware.Middleware {
	return a.mw
}

func (a *App) Run() error {
	a.scheduler.RegisterJobs()
	a.scheduler.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	return a.engine.Run(":" + port)
}

func (a *App) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
}
