package teacher

import (
	"project-portal/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleTeacher) InitRouter(r *gin.RouterGroup) {
	teacherGroup := r.Group("/teacher")

	teacherGroup.GET("/list", List)

	teacherGroup.Use(middleware.Auth(), middleware.Staff())
	{
		teacherGroup.POST("", Create)
		teacherGroup.DELETE("/:id", Delete)
	}
}
