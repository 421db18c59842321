package moderation

import (
	"project-portal/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

// InitRouter 审核相关端点只对教师和管理员开放
func (m *ModuleModeration) InitRouter(r *gin.RouterGroup) {
	moderationGroup := r.Group("/moderation", middleware.Auth(), middleware.Moderator())

	moderationGroup.GET("", Queue)
	moderationGroup.GET("/pending-count", PendingCount)
	moderationGroup.GET("/export", Export)
	moderationGroup.POST("/approve", BulkApprove)
	moderationGroup.POST("/:id", Moderate)
}
