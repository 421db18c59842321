package moderation

import (
	"log/slog"

	"project-portal/internal/global/logger"
)

var log *slog.Logger

type ModuleModeration struct{}

func (m *ModuleModeration) GetName() string {
	return "Moderation"
}

func (m *ModuleModeration) Init() {
	log = logger.New("Moderation")
}

func selfInit() {
	m := &ModuleModeration{}
	m.Init()
}
