package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"project-portal/config"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// AppName 日志和 Sentry 中使用的应用名
const AppName = "project-portal"

var (
	instance *slog.Logger
	once     sync.Once
)

// Get 全局 Logger，第一次调用时按配置创建
func Get() *slog.Logger {
	once.Do(func() {
		cfg := config.Get()
		if cfg == nil {
			cfg = config.Default()
		}
		instance = slog.New(newHandler(cfg)).With("app_name", AppName, "env", string(cfg.Mode))
	})
	return instance
}

// New 带 module 字段的 Logger，每个模块 Init 时创建一次
func New(module string) *slog.Logger {
	return Get().With("module", module)
}

// newHandler debug 输出文本到终端；release 输出 JSON，配置了文件路径时按大小轮转；
// 配置了 Sentry 时 Warn 以上同时上报
func newHandler(cfg *config.Config) slog.Handler {
	release := cfg.Mode == config.ModeRelease
	opts := &slog.HandlerOptions{AddSource: release, Level: ParseLevel(cfg.Log.Level)}

	var base slog.Handler
	if release {
		var w io.Writer = os.Stdout
		if cfg.Log.FilePath != "" {
			w = &lumberjack.Logger{
				Filename:   cfg.Log.FilePath,
				MaxSize:    cfg.Log.MaxSize,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAge,
				Compress:   cfg.Log.Compress,
			}
		}
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(os.Stdout, opts)
	}

	if cfg.Sentry.Dsn == "" {
		return base
	}
	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
		AddSource:  release,
	}.NewSentryHandler(context.Background())
	return fanout{base, sentryHandler}
}

// ParseLevel 无法识别时取 Info
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// fanout 把记录写到多个 handler，一个失败不影响其它
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
