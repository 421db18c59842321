package subject

import (
	"log/slog"

	"project-portal/internal/global/logger"
)

var log *slog.Logger

type ModuleSubject struct{}

func (m *ModuleSubject) GetName() string {
	return "Subject"
}

func (m *ModuleSubject) Init() {
	log = logger.New("Subject")
}

func selfInit() {
	m := &ModuleSubject{}
	m.Init()
}
