package response

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// gin.Context 中的键，Logger 和 Sentry 从这里取错误与响应体
const (
	ErrorContextKey    = "error"
	ResponseContextKey = "response_body"
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Error 业务错误。Code 为三位数时即 HTTP 状态码，五位数时前三位是状态码
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
	Origin  string `json:"origin"`

	cause error
	stack pkgerrors.StackTrace
}

func newError(code int32, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) HTTPStatus() int {
	code := int(e.Code)
	for code >= 1000 {
		code /= 100
	}
	if code < 100 || code > 599 {
		return 500
	}
	return code
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// StackTrace 供 sentry-go 提取堆栈
func (e *Error) StackTrace() pkgerrors.StackTrace {
	if e.stack != nil {
		return e.stack
	}
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Is 错误码相同即视为同一种错误
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == e.Code
}

// clone 预定义的错误是全局变量，修改前先复制一份
func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WithOrigin 记录原始错误，debug 模式下 Origin 会返回给前端
func (e *Error) WithOrigin(err error) *Error {
	if err == nil {
		return e
	}
	err = ensureStack(err)
	out := e.clone()
	out.cause = err
	out.Origin = fmt.Sprintf("%+v", err)
	out.stack = err.(stackTracer).StackTrace()
	return out
}

// WithTips 附加给用户看的提示，release 模式也会返回
func (e *Error) WithTips(details ...string) *Error {
	out := e.clone()
	if len(details) > 0 {
		out.Message += "：" + strings.Join(details, "；")
	}
	return out
}

func ensureStack(err error) error {
	if _, ok := err.(stackTracer); ok {
		return err
	}
	return pkgerrors.WithStack(err)
}
