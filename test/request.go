package test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-portal/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// DoRequest 直接调用 handler，请求体为 JSON
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, request any) (resp response.ResponseBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	requestBytes, err := json.Marshal(request)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(requestBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// NewRouter 挂载路由到 /api 下，和线上一样带 Recovery
func NewRouter(register func(r *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		defer response.Recovery(c)
		c.Next()
	})
	register(r.Group("/api"))
	return r
}

// File multipart 中的文件字段
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Call 发送请求，body 为 nil、JSON 对象或 *Multipart
func Call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case *Multipart:
		buf, contentType := b.encode(t)
		req = httptest.NewRequest(method, path, buf)
		req.Header.Set("Content-Type", contentType)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Do 发送请求并解析统一响应体
func Do(t *testing.T, h http.Handler, method, path, token string, body any) response.ResponseBody {
	t.Helper()
	w := Call(t, h, method, path, token, body)
	var resp response.ResponseBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// Multipart 表单字段，同名字段可以有多个值
type Multipart struct {
	Fields map[string][]string
	Files  []File
}

func (m *Multipart) encode(t *testing.T) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, values := range m.Fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range m.Files {
		fw, err := mw.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = fw.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}
