package module

import (
	"project-portal/internal/module/comment"
	"project-portal/internal/module/moderation"
	"project-portal/internal/module/ping"
	"project-portal/internal/module/project"
	"project-portal/internal/module/subject"
	"project-portal/internal/module/teacher"
	"project-portal/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&user.ModuleUser{},
		&ping.ModulePing{},
		&subject.ModuleSubject{},
		&teacher.ModuleTeacher{},
		&project.ModuleProject{},
		&comment.ModuleComment{},
		&moderation.ModuleModeration{},
	})
}
