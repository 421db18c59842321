package subject

import (
	"project-portal/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleSubject) InitRouter(r *gin.RouterGroup) {
	subjectGroup := r.Group("/subject")

	subjectGroup.GET("/list", List)

	subjectGroup.Use(middleware.Auth(), middleware.Staff())
	{
		subjectGroup.POST("", Create)
		subjectGroup.PUT("/:id", Update)
		subjectGroup.DELETE("/:id", Delete)
	}
}
