// Package tracing 为 GORM、Redis 和 Resty 挂载 Sentry 性能追踪
package tracing

import (
	"context"

	"project-portal/config"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// IsEnabled 配置了 Sentry DSN 时才启用追踪
func IsEnabled() bool {
	cfg := config.Get()
	return cfg != nil && cfg.Sentry.Dsn != ""
}

// StartSpan 在当前请求的 transaction 下创建子 span。
// 没有 transaction 时返回不采样的 span，调用方照常 Finish
//
//	span := tracing.StartSpan(c, "excel.export", "导出审核队列")
//	defer span.Finish()
func StartSpan(c *gin.Context, operation, description string) *sentry.Span {
	ctx := context.Background()
	if c != nil && c.Request != nil {
		ctx = c.Request.Context()
	}
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		return parent.StartChild(operation, sentry.WithDescription(description))
	}
	return sentry.StartSpan(ctx, operation,
		sentry.WithDescription(description),
		sentry.WithSpanSampled(sentry.SampledFalse))
}
