package user

import (
	"project-portal/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

// InitRouter 注册账号相关的路由，所有端点以 /user 为前缀
func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user")

	userGroup.POST("/register", Register)
	userGroup.POST("/login", Login)

	userGroup.Use(middleware.Auth())
	{
		userGroup.POST("/logout", Logout)
		userGroup.GET("/profile", Profile)
		userGroup.PUT("/password", ChangePassword)
	}
}
