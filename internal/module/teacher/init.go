package teacher

import (
	"log/slog"

	"project-portal/internal/global/logger"
)

var log *slog.Logger

type ModuleTeacher struct{}

func (m *ModuleTeacher) GetName() string {
	return "Teacher"
}

func (m *ModuleTeacher) Init() {
	log = logger.New("Teacher")
}

func selfInit() {
	m := &ModuleTeacher{}
	m.Init()
}
