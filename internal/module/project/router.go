package project

import (
	"project-portal/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (p *ModuleProject) InitRouter(r *gin.RouterGroup) {
	// 顶栏的即时搜索
	r.GET("/search", QuickSearch)

	projectGroup := r.Group("/project")

	// 公开访问，登录后可以看到自己未发布的项目
	projectGroup.GET("/list", List)
	projectGroup.GET("/home", Home)
	projectGroup.GET("/:id", middleware.OptionalAuth(), Detail)
	projectGroup.GET("/:id/download", middleware.OptionalAuth(), Download)

	authGroup := projectGroup.Group("", middleware.Auth())
	{
		authGroup.GET("/mine", Mine)
		authGroup.POST("/create", Create)
		authGroup.PUT("/:id", Edit)
		authGroup.POST("/:id/resubmit", Resubmit)
	}
}
