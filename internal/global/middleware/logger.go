package middleware

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"project-portal/internal/global/jwt"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// maxLoggedBody 日志里最多保留 10KB 响应体
const maxLoggedBody = 10 << 10

// bodyRecorder 复制响应体的前 maxLoggedBody 字节
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.keep(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.keep([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyRecorder) keep(b []byte) {
	if room := maxLoggedBody - w.buf.Len(); room > 0 {
		w.buf.Write(b[:min(len(b), room)])
	}
}

// Logger 记录请求日志，只记录 JSON 响应体，附件下载和导出不记录
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if payload, ok := jwt.GetUserPayload(c); ok {
			attrs = append(attrs, "user_id", payload.UserID)
		}
		if strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "application/json") {
			body := rec.buf.String()
			if rec.buf.Len() >= maxLoggedBody {
				body += "...(truncated)"
			}
			attrs = append(attrs, "response_body", body)
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		log.Log(c.Request.Context(), level, "HTTP Request", attrs...)
	}
}

// SentryEnrichIP 放在 sentry 中间件之后，之后的上报都带客户端 IP
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				ip := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: ip})
				scope.SetTag("client_ip", ip)
				if v := c.GetHeader("X-Forwarded-For"); v != "" {
					scope.SetTag("x_forwarded_for", v)
				}
			})
		}
		c.Next()
	}
}

// sentryUser 登录后把账号写进 Sentry scope
func sentryUser(c *gin.Context, payload *jwt.Claims) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.ConfigureScope(func(scope *sentrylib.Scope) {
		scope.SetUser(sentrylib.User{
			ID:        strconv.FormatUint(uint64(payload.UserID), 10),
			Username:  payload.Username,
			IPAddress: c.ClientIP(),
		})
		scope.SetTag("is_staff", strconv.FormatBool(payload.IsStaff))
	})
}
