package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/resitasrav/BookLab-System/pkg/jwt"
	"github.com/resitasrav/BookLab-System/pkg/response"
)

// 由 JWTAuth 中间件写入的上下文键
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxClaims = "claims"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxRole)
}

// MustGetClaims 取出当前 Access Token 的完整声明，登出时用于写入黑名单
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// MustGetPathID 取出路径参数 :id 并校验为 UUID，失败时写入 400 响应。
// 主键列均为 uuid 类型，非法值若落到数据库会变成 22P02 系统错误。
func MustGetPathID(c *gin.Context, name string) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, name+"ID不能为空")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, name+"ID格式无效")
		return "", false
	}
	return id, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
