package server

import (
	"fmt"
	"log/slog"
	"time"

	"project-portal/config"
	"project-portal/internal/global/cache"
	"project-portal/internal/global/database"
	"project-portal/internal/global/httpclient"
	"project-portal/internal/global/logger"
	"project-portal/internal/global/middleware"
	"project-portal/internal/global/sentry"
	"project-portal/internal/global/storage"
	"project-portal/internal/module"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

// Init 加载配置，连接数据库、Redis、对象存储，并初始化各模块
func Init() {
	config.Init()
	log = logger.New("Server")

	// Sentry 需要先于数据库和 Redis 初始化，追踪插件依赖它
	if err := sentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	}

	database.Init()
	cache.Init()
	httpclient.Init()
	storage.Init()

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

// Router 注册中间件和各模块路由
func Router() *gin.Engine {
	gin.SetMode(string(config.Get().Mode))
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}
	return r
}

func Run() {
	defer sentry.Flush(2 * time.Second)

	r := Router()
	err := r.Run(config.Get().Host + ":" + config.Get().Port)
	tools.PanicOnErr(err)
}
