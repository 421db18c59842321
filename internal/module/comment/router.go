package comment

import (
	"project-portal/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleComment) InitRouter(r *gin.RouterGroup) {
	projectGroup := r.Group("/project")

	projectGroup.GET("/:id/comments", middleware.OptionalAuth(), List)
	projectGroup.POST("/:id/comments", middleware.Auth(), Add)
}
