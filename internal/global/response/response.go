package response

import (
	"errors"
	"fmt"

	"project-portal/config"
	"project-portal/internal/global/logger"
	"project-portal/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

// ResponseBody 统一响应体
type ResponseBody struct {
	Code   int32  `json:"code"`
	Msg    string `json:"msg"`
	Origin string `json:"origin,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const successCode int32 = 200

func Success(c *gin.Context, data ...any) {
	body := ResponseBody{Code: successCode, Msg: "success"}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.Set(ResponseContextKey, body)
	c.JSON(200, body)
}

// Fail 写入错误响应并终止后续 handler，非 *Error 的错误按服务器内部错误处理
func Fail(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrServerInternal.WithOrigin(err)
	}

	body := ResponseBody{Code: e.Code, Msg: e.Message}
	if cfg := config.Get(); cfg == nil || cfg.Mode == config.ModeDebug {
		body.Origin = e.Origin
	}

	c.Set(ErrorContextKey, e)
	c.Set(ResponseContextKey, body)
	_ = c.Error(e)
	sentry.CaptureException(c, e)
	c.AbortWithStatusJSON(e.HTTPStatus(), body)
}

// Recovery 捕获 panic 并返回 500
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		Panic(c, r)
	}
}

// Panic 记录 panic 并返回 ErrServerInternal；附件已开始发送时只中断请求
func Panic(c *gin.Context, r any) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	logger.New("Recovery").Error("请求处理发生 panic",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"written", c.Writer.Written(),
	)
	if c.Writer.Written() {
		c.Abort()
		return
	}
	Fail(c, ErrServerInternal.WithOrigin(err))
}
