package middleware

import (
	"project-portal/internal/global/response"

	"github.com/gin-gonic/gin"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				response.Panic(c, r)
			}
		}()
		c.Next()
	}
}
