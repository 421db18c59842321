package sentry

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"project-portal/config"
	"project-portal/internal/global/jwt"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Release 上报到 Sentry 的版本号，/ping 也返回它
const Release = "project-portal@1.0.0"

// CodedError 带 HTTP 状态的业务错误，response.Error 实现了它
type CodedError interface {
	error
	HTTPStatus() int
}

// Init 未配置 DSN 时什么也不做
func Init() error {
	cfg := config.Get()
	if cfg.Sentry.Dsn == "" {
		return nil
	}

	tracesRate := cfg.Sentry.SampleRate
	if tracesRate <= 0 {
		tracesRate = 1.0
	}
	env := cfg.Sentry.Environment
	if env == "" {
		env = string(cfg.Mode)
	}

	// 错误事件全部上报，只对性能追踪采样
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.Dsn,
		Environment:      env,
		Release:          Release,
		SampleRate:       1.0,
		EnableTracing:    true,
		TracesSampleRate: tracesRate,
		EnableLogs:       true,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

// Middleware 未启用时返回空中间件；panic 继续抛给 Recovery
func Middleware() gin.HandlerFunc {
	if !enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// CaptureException 只上报 5xx 和未知错误，附带路由和项目 id
func CaptureException(c *gin.Context, err error) {
	if !enabled() || !shouldReport(err) {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetTag("method", c.Request.Method)
		if route := c.FullPath(); route != "" {
			scope.SetTag("route", route)
		}
		if id := c.Param("id"); id != "" {
			scope.SetTag("resource_id", id)
		}
		if payload, ok := jwt.GetUserPayload(c); ok {
			scope.SetUser(sentry.User{
				ID:        strconv.FormatUint(uint64(payload.UserID), 10),
				Username:  payload.Username,
				IPAddress: c.ClientIP(),
			})
		}
		hub.CaptureException(err)
	})
}

func shouldReport(err error) bool {
	var e CodedError
	if errors.As(err, &e) {
		return e.HTTPStatus() >= 500
	}
	return true
}

func enabled() bool {
	cfg := config.Get()
	return cfg != nil && cfg.Sentry.Dsn != ""
}

// Flush 退出前调用，等待缓冲的事件发送完
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
