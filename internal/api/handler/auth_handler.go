package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc    service.AuthService
	refreshTTL time.Duration
}

// NewAuthHandler 创建 AuthHandler；cfg 为 nil 时 Refresh Cookie 有效期默认 7 天
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	ttl := 7 * 24 * time.Hour
	if cfg != nil && cfg.RefreshTokenTTL > 0 {
		ttl = cfg.RefreshTokenTTL
	}
	return &AuthHandler{authSvc: authSvc, refreshTTL: ttl}
}

// Register 学生注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// VerifyEmail 邮箱验证
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.VerifyEmail(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// ResendCode 重发验证码
// POST /api/v1/auth/resend-code
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req dto.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ResendCode(c.Request.Context(), &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Login 用户登录，Refresh Token 同时写入 HttpOnly Cookie
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, int(h.refreshTTL.Seconds()))
	response.OK(c, result)
}

// RefreshToken 刷新 Token，优先读取请求体，其次读取 Cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		response.BadRequest(c, 10001, "refresh_token 不能为空")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, int(h.refreshTTL.Seconds()))
	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims, h.refreshTokenFrom(c)); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, "", -1)
	response.OK(c, nil)
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	var req dto.RefreshTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}
	if v, err := c.Cookie(refreshCookieName); err == nil {
		return v
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, value, maxAge, refreshCookiePath, "", c.Request.TLS != nil, true)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrAccountInactive):
		response.Forbidden(c, 11002, "账号尚未激活，请等待工作人员审核")
	case errors.Is(err, service.ErrEmailDomainNotAllowed):
		response.BadRequest(c, 11003, "只允许使用学校邮箱注册")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11004, "该邮箱已被注册")
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, 11005, "该用户名已被使用")
	case errors.Is(err, service.ErrInvalidPhone):
		response.BadRequest(c, 11006, "手机号只能包含数字")
	case errors.Is(err, service.ErrInvalidCode):
		response.BadRequest(c, 11007, "验证码错误")
	case errors.Is(err, service.ErrCodeExpired):
		response.BadRequest(c, 11008, "验证码已过期，请重新获取")
	case errors.Is(err, service.ErrAlreadyVerified):
		response.Conflict(c, 11009, "邮箱已验证")
	case errors.Is(err, service.ErrCodeDeliveryFailed):
		response.Error(c, http.StatusBadGateway, 11010, "验证码邮件发送失败，请稍后重试")
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, 11011, "Token 无效或已过期")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11012, "用户不存在")
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 11013, "用户档案不存在")
	default:
		response.InternalError(c)
	}
}
