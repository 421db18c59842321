package ping

import (
	"context"
	"time"

	"project-portal/internal/global/cache"
	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", Ping)
}

// Ping 健康检查，附带数据库和 Redis 的连通性
func Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	result := map[string]interface{}{
		"message":  "pong",
		"version":  sentry.Release,
		"database": "ok",
		"redis":    "disabled",
	}
	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.Warn("数据库连接异常", "error", err)
		result["database"] = "unavailable"
	}
	if cache.Enabled() {
		result["redis"] = "ok"
		if err := cache.Client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis 连接异常", "error", err)
			result["redis"] = "unavailable"
		}
	}
	response.Success(c, result)
}
