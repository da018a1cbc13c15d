/*
 * @Description: 管理员登录
 * @Author: 青崖
 * @Date: 2026-05-20 15:40:33
 * @LastEditTime: 2026-08-25 20:12:46
 * @LastEditors: 青崖
 */
package auth_handler

import (
	"log"
	"net/http"

	"github.com/luoying-studio/luoying-app/internal/pkg/auth"
	"github.com/luoying-studio/luoying-app/internal/pkg/security"
	"github.com/luoying-studio/luoying-app/pkg/config"
	"github.com/luoying-studio/luoying-app/pkg/response"

	"github.com/gin-gonic/gin"
)

// 内置管理员账号的固定ID约定：用户ID 1，用户组ID 1（管理员组）。
const (
	adminUserID      = 1
	adminUserGroupID = 1
)

// AuthHandler 封装了认证相关的控制器方法
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler 是 AuthHandler 的构造函数
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// LoginRequest 是登录请求体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验管理员账号密码并签发 JWT。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	username := h.cfg.GetString(config.KeyAdminUsername)
	passwordHash := h.cfg.GetString(config.KeyAdminPasswordHash)
	if username == "" || passwordHash == "" {
		log.Println("[认证] 管理员账号未配置，拒绝登录")
		response.Fail(c, http.StatusInternalServerError, "管理员账号未配置")
		return
	}

	if req.Username != username || !security.CheckPasswordHash(req.Password, passwordHash) {
		response.Fail(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	secret := []byte(h.cfg.GetString(config.KeyJWTSecret))
	token, err := auth.GenerateToken(adminUserID, adminUserGroupID, secret)
	if err != nil {
		log.Printf("[认证] 签发Token失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, "签发Token失败")
		return
	}

	response.Success(c, gin.H{"accessToken": token}, "登录成功")
}
