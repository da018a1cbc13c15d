/*
 * @Description:
 * @Author: 青崖
 * @Date: 2026-05-25 16:02:40
 * @LastEditTime: 2026-08-27 15:21:33
 * @LastEditors: 青崖
 */
// luoying-app/internal/infra/router/router.go
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/luoying-studio/luoying-app/internal/app/middleware"
	auth_handler "github.com/luoying-studio/luoying-app/pkg/handler/auth"
	dedup_handler "github.com/luoying-studio/luoying-app/pkg/handler/dedup"
	upload_handler "github.com/luoying-studio/luoying-app/pkg/handler/upload"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")

		c.Next()
	})
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler   *auth_handler.AuthHandler
	uploadHandler *upload_handler.UploadHandler
	dedupHandler  *dedup_handler.DedupHandler
	mw            *middleware.Middleware
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.AuthHandler,
	uploadHandler *upload_handler.UploadHandler,
	dedupHandler *dedup_handler.DedupHandler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		authHandler:   authHandler,
		uploadHandler: uploadHandler,
		dedupHandler:  dedupHandler,
		mw:            mw,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
// 这是在 main.go 中将被调用的唯一入口点。
func (r *Router) Setup(engine *gin.Engine) {
	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware())

	r.registerAuthRoutes(apiGroup)
	r.registerUploadRoutes(apiGroup)
	r.registerDedupRoutes(apiGroup)
}

// registerAuthRoutes 注册认证相关的路由
func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", r.authHandler.Login)
	}
}

// registerUploadRoutes 注册上传相关的路由 (后台管理)
func (r *Router) registerUploadRoutes(api *gin.RouterGroup) {
	uploadAdmin := api.Group("/admin").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		// 上传接口带频率限制，防止批量灌入
		uploadAdmin.POST("/upload", middleware.UploadRateLimit(), r.uploadHandler.Upload)
	}
}

// registerDedupRoutes 注册重复文件管理相关的路由 (后台管理)
func (r *Router) registerDedupRoutes(api *gin.RouterGroup) {
	dedupAdmin := api.Group("/admin/dedup").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		// 扫描是同步执行的重操作，限制触发频率
		dedupAdmin.POST("/scan", middleware.CustomRateLimit(6, 2), r.dedupHandler.Scan)

		dedupAdmin.GET("/scans/:scanID", r.dedupHandler.GetScan)
		dedupAdmin.POST("/select", r.dedupHandler.Select)
		dedupAdmin.POST("/delete", r.dedupHandler.Delete)
	}
}
