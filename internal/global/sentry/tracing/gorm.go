package tracing

import (
	"errors"
	"time"

	"project-portal/config"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"
)

const gormStateKey = "sentry:tracing"

type gormState struct {
	span  *sentry.Span
	start time.Time
}

// GormPlugin 每条 SQL 一个 span，描述只写表名，不记录参数
type GormPlugin struct {
	slowThreshold time.Duration // 为 0 时全部上报
}

func NewGormTracingPlugin() *GormPlugin {
	return &GormPlugin{
		slowThreshold: time.Duration(config.Get().Sentry.Tracing.DBSlowThresholdMs) * time.Millisecond,
	}
}

func (p *GormPlugin) Name() string {
	return "portal:sentry-tracing"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("sentry:before_create", p.before("db.sql.create")),
		cb.Query().Before("gorm:query").Register("sentry:before_query", p.before("db.sql.query")),
		cb.Update().Before("gorm:update").Register("sentry:before_update", p.before("db.sql.update")),
		cb.Delete().Before("gorm:delete").Register("sentry:before_delete", p.before("db.sql.delete")),
		cb.Row().Before("gorm:row").Register("sentry:before_row", p.before("db.sql.row")),
		cb.Raw().Before("gorm:raw").Register("sentry:before_raw", p.before("db.sql.raw")),

		cb.Create().After("gorm:create").Register("sentry:after_create", p.after),
		cb.Query().After("gorm:query").Register("sentry:after_query", p.after),
		cb.Update().After("gorm:update").Register("sentry:after_update", p.after),
		cb.Delete().After("gorm:delete").Register("sentry:after_delete", p.after),
		cb.Row().After("gorm:row").Register("sentry:after_row", p.after),
		cb.Raw().After("gorm:raw").Register("sentry:after_raw", p.after),
	)
}

func (p *GormPlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil || db.Statement.Context == nil {
			return
		}
		parent := sentry.SpanFromContext(db.Statement.Context)
		if parent == nil {
			return
		}
		span := parent.StartChild(op)
		span.Description = tableOf(db)
		span.SetData("db.system", db.Dialector.Name())
		db.InstanceSet(gormStateKey, &gormState{span: span, start: time.Now()})
	}
}

func (p *GormPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(gormStateKey)
	if !ok {
		return
	}
	st, ok := v.(*gormState)
	if !ok || st.span == nil {
		return
	}

	// sentry-go 不能丢弃已创建的 span，只能标记为不采样
	if p.slowThreshold > 0 && time.Since(st.start) < p.slowThreshold {
		st.span.Sampled = sentry.SampledFalse
	}
	st.span.SetData("db.rows_affected", db.RowsAffected)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		st.span.Status = sentry.SpanStatusInternalError
		st.span.SetData("db.error", db.Error.Error())
	} else {
		st.span.Status = sentry.SpanStatusOK
	}
	st.span.Finish()
}

func tableOf(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	return "unknown"
}
