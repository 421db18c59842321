package project

import (
	"log/slog"

	"project-portal/internal/global/logger"
	"project-portal/internal/global/validate"
)

var log *slog.Logger

type ModuleProject struct{}

func (p *ModuleProject) GetName() string {
	return "Project"
}

func (p *ModuleProject) Init() {
	log = logger.New("Project")
	validate.Init()
}

func selfInit() {
	p := &ModuleProject{}
	p.Init()
}
