package middleware

import (
	"project-portal/internal/global/access"
	"project-portal/internal/global/jwt"
	"project-portal/internal/global/response"
	"project-portal/internal/global/session"

	"github.com/gin-gonic/gin"
)

// Auth 要求登录，token 可以来自 Authorization 头或 session cookie
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.Token(c)
		if token == "" {
			response.Fail(c, response.ErrUnauthorized)
			return
		}
		payload, valid := jwt.ParseToken(token)
		if !valid || session.IsRevoked(c.Request.Context(), payload) {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		jwt.SetUserPayload(c, payload)
		sentryUser(c, payload)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时记录身份，没有也放行
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := session.Token(c); token != "" {
			if payload, valid := jwt.ParseToken(token); valid && !session.IsRevoked(c.Request.Context(), payload) {
				jwt.SetUserPayload(c, payload)
				sentryUser(c, payload)
			}
		}
		c.Next()
	}
}

// Moderator 教师或管理员，需放在 Auth 之后
func Moderator() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := access.Current(c)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if !id.CanModerate() {
			response.Fail(c, response.ErrForbidden.WithTips("只有教师或管理员可以审核项目"))
			return
		}
		c.Next()
	}
}

// Staff 管理员，需放在 Auth 之后
func Staff() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := access.Current(c)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if !id.IsStaff() {
			response.Fail(c, response.ErrForbidden.WithTips("仅管理员可操作"))
			return
		}
		c.Next()
	}
}
