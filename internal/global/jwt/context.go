package jwt

import (
	"github.com/gin-gonic/gin"
)

// payloadKey 登录信息在 gin.Context 中的键
const payloadKey = "payload"

// SetUserPayload 认证通过后保存登录信息
func SetUserPayload(c *gin.Context, claims *Claims) {
	c.Set(payloadKey, claims)
}

// GetUserPayload 游客或 token 无效时 ok 为 false
func GetUserPayload(c *gin.Context) (claims *Claims, ok bool) {
	v, exists := c.Get(payloadKey)
	if !exists {
		return nil, false
	}
	claims, ok = v.(*Claims)
	return claims, ok && claims != nil
}
