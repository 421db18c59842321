// Package session 基于 JWT 的登录态：签发、写 cookie、注销
package session

import (
	"context"
	"net/http"

	"project-portal/config"
	"project-portal/internal/global/cache"
	"project-portal/internal/global/jwt"

	"github.com/gin-gonic/gin"
)

// CookieName 保存 token 的 cookie
const CookieName = "session"

const revokedKey = "session:revoked:"

// Login 签发 token 并写入 HttpOnly cookie
func Login(c *gin.Context, payload jwt.Payload) string {
	token := jwt.CreateToken(payload)
	maxAge := int(config.Get().JWT.AccessExpire)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", config.Get().Mode == config.ModeRelease, true)
	return token
}

// Logout 清除 cookie，并在 token 过期前把它加入黑名单
func Logout(c *gin.Context, claims *jwt.Claims) error {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", config.Get().Mode == config.ModeRelease, true)
	if claims == nil {
		return nil
	}
	return Revoke(c.Request.Context(), claims)
}

// Revoke 未配置 Redis 时只能依赖 token 自然过期
func Revoke(ctx context.Context, claims *jwt.Claims) error {
	ttl := claims.ExpiresIn()
	if !cache.Enabled() || ttl <= 0 || claims.Id == "" {
		return nil
	}
	return cache.Client.Set(ctx, cache.KeyPrefix+revokedKey+claims.Id, 1, ttl).Err()
}

// IsRevoked Redis 出错时按未注销处理，避免缓存故障导致全站无法登录
func IsRevoked(ctx context.Context, claims *jwt.Claims) bool {
	if !cache.Enabled() || claims.Id == "" {
		return false
	}
	return cache.Client.Exists(ctx, cache.KeyPrefix+revokedKey+claims.Id).Val() > 0
}

// Token 依次从 Authorization 头和 cookie 中读取 token
func Token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	if v, err := c.Cookie(CookieName); err == nil {
		return v
	}
	return ""
}
