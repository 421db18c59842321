package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"project-portal/internal/global/jwt"
	"project-portal/internal/global/response"
	"project-portal/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	test.Setup(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(Logger(log))
	r.GET("/json/:id", func(c *gin.Context) { response.Success(c, gin.H{"id": c.Param("id")}) })
	r.GET("/file", func(c *gin.Context) { c.Data(http.StatusOK, "application/pdf", []byte("%PDF-secret")) })
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, strings.Repeat("x", maxLoggedBody*2)) })

	w := test.Call(t, r, http.MethodGet, "/json/7?q=go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := buf.String()
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "route=/json/:id")
	require.Contains(t, out, `query="q=go"`)
	require.Contains(t, out, `\"id\":\"7\"`)

	buf.Reset()
	test.Call(t, r, http.MethodGet, "/file", "", nil)
	require.NotContains(t, buf.String(), "secret")
	require.NotContains(t, buf.String(), "response_body")

	buf.Reset()
	w = test.Call(t, r, http.MethodGet, "/big", "", nil)
	require.Len(t, w.Body.String(), maxLoggedBody*2)

	buf.Reset()
	test.Call(t, r, http.MethodGet, "/missing", "", nil)
	require.Contains(t, buf.String(), "level=WARN")
}

func TestBodyRecorderCaps(t *testing.T) {
	r := gin.New()
	var kept int
	r.GET("/", func(c *gin.Context) {
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		_, _ = rec.WriteString(strings.Repeat("a", maxLoggedBody-10))
		_, _ = rec.Write([]byte(strings.Repeat("b", 100)))
		kept = rec.buf.Len()
	})
	test.Call(t, r, http.MethodGet, "/", "", nil)
	require.Equal(t, maxLoggedBody, kept)
}

func TestAuth(t *testing.T) {
	db := test.Setup(t)
	u := test.CreateUser(t, db, "alice")
	staff := test.CreateStaff(t, db, "admin")
	teacherUser, _ := test.CreateTeacher(t, db, "wang")

	r := test.NewRouter(func(r *gin.RouterGroup) {
		r.GET("/me", Auth(), func(c *gin.Context) {
			p, _ := jwt.GetUserPayload(c)
			response.Success(c, gin.H{"user_id": p.UserID})
		})
		r.GET("/maybe", OptionalAuth(), func(c *gin.Context) {
			_, ok := jwt.GetUserPayload(c)
			response.Success(c, gin.H{"logged_in": ok})
		})
		r.GET("/staff", Auth(), Staff(), func(c *gin.Context) { response.Success(c) })
		r.GET("/moderate", Auth(), Moderator(), func(c *gin.Context) { response.Success(c) })
	})

	test.ErrorEqual(t, response.ErrUnauthorized, test.Do(t, r, http.MethodGet, "/api/me", "", nil))
	test.ErrorEqual(t, response.ErrTokenInvalid, test.Do(t, r, http.MethodGet, "/api/me", "garbage", nil))
	data := test.Data[struct {
		UserID uint `json:"user_id"`
	}](t, test.Do(t, r, http.MethodGet, "/api/me", test.Token(u), nil))
	require.Equal(t, u.ID, data.UserID)

	// 无效 token 在可选登录的接口上按游客处理
	maybe := test.Data[struct {
		LoggedIn bool `json:"logged_in"`
	}](t, test.Do(t, r, http.MethodGet, "/api/maybe", "garbage", nil))
	require.False(t, maybe.LoggedIn)

	test.ErrorEqual(t, response.ErrForbidden, test.Do(t, r, http.MethodGet, "/api/staff", test.Token(u), nil))
	test.NoError(t, test.Do(t, r, http.MethodGet, "/api/staff", test.Token(staff), nil))

	test.ErrorEqual(t, response.ErrForbidden, test.Do(t, r, http.MethodGet, "/api/moderate", test.Token(u), nil))
	test.NoError(t, test.Do(t, r, http.MethodGet, "/api/moderate", test.Token(teacherUser), nil))
	test.NoError(t, test.Do(t, r, http.MethodGet, "/api/moderate", test.Token(staff), nil))
}
