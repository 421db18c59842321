package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"project-portal/internal/global/response"
	"project-portal/internal/global/session"
	"project-portal/internal/model"
	"project-portal/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/publicsuffix"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	db := test.Setup(t)
	selfInit()
	r := test.NewRouter(func(r *gin.RouterGroup) {
		(&ModuleUser{}).InitRouter(r)
	})
	return db, r
}

func registerReq(username string) RegisterReq {
	return RegisterReq{
		Username:        username,
		Email:           username + "@Example.com",
		FirstName:       "San",
		LastName:        "Zhang",
		Password:        "abcd1234",
		PasswordConfirm: "abcd1234",
		GroupName:       "2班",
		EnrollmentYear:  2022,
	}
}

type authData struct {
	Token   string  `json:"token"`
	Account account `json:"account"`
}

func TestRegister(t *testing.T) {
	db, r := setup(t)

	resp := test.Do(t, r, http.MethodPost, "/api/user/register", "", registerReq("zhangsan"))
	data := test.Data[authData](t, resp)
	require.NotEmpty(t, data.Token)
	require.Equal(t, "zhangsan@example.com", data.Account.Email)
	require.NotNil(t, data.Account.Student)
	require.Equal(t, "2班", data.Account.Student.GroupName)
	require.Nil(t, data.Account.Teacher)

	var student model.Student
	require.NoError(t, db.Where("user_id = ?", data.Account.ID).First(&student).Error)
	require.Equal(t, 2022, student.EnrollmentYear)

	// 用户名和邮箱都不能重复
	resp = test.Do(t, r, http.MethodPost, "/api/user/register", "", registerReq("zhangsan"))
	test.ErrorEqual(t, response.ErrAlreadyExists, resp)
	dup := registerReq("lisi")
	dup.Email = "ZhangSan@example.com"
	resp = test.Do(t, r, http.MethodPost, "/api/user/register", "", dup)
	test.ErrorEqual(t, response.ErrAlreadyExists, resp)
}

func TestRegisterValidation(t *testing.T) {
	db, r := setup(t)

	weak := registerReq("weak")
	weak.Password, weak.PasswordConfirm = "abcdefgh", "abcdefgh"
	test.ErrorEqual(t, response.ErrPasswordWeak, test.Do(t, r, http.MethodPost, "/api/user/register", "", weak))

	mismatch := registerReq("mismatch")
	mismatch.PasswordConfirm = "abcd12345"
	test.ErrorEqual(t, response.ErrInvalidRequest, test.Do(t, r, http.MethodPost, "/api/user/register", "", mismatch))

	noName := registerReq("noname")
	noName.LastName = ""
	test.ErrorEqual(t, response.ErrInvalidRequest, test.Do(t, r, http.MethodPost, "/api/user/register", "", noName))

	badEmail := registerReq("bademail")
	badEmail.Email = "not-an-email"
	test.ErrorEqual(t, response.ErrInvalidRequest, test.Do(t, r, http.MethodPost, "/api/user/register", "", badEmail))

	blank := registerReq("blank")
	blank.Username = "   "
	blank.Email = "blank@example.com"
	test.ErrorEqual(t, response.ErrInvalidRequest, test.Do(t, r, http.MethodPost, "/api/user/register", "", blank))
	blankName := registerReq("blankname")
	blankName.FirstName = " \t"
	test.ErrorEqual(t, response.ErrInvalidRequest, test.Do(t, r, http.MethodPost, "/api/user/register", "", blankName))

	var n int64
	require.NoError(t, db.Model(&model.User{}).Where("username = ?", "").Count(&n).Error)
	require.Zero(t, n)
}

func TestLogin(t *testing.T) {
	db, r := setup(t)
	u := test.CreateStaff(t, db, "admin")

	resp := test.Do(t, r, http.MethodPost, "/api/user/login", "", LoginReq{Username: "admin", Password: test.Password})
	data := test.Data[struct {
		Token   string `json:"token"`
		IsStaff bool   `json:"is_staff"`
	}](t, resp)
	require.NotEmpty(t, data.Token)
	require.True(t, data.IsStaff)

	resp = test.Do(t, r, http.MethodPost, "/api/user/login", "", LoginReq{Username: "admin", Password: "wrong"})
	test.ErrorEqual(t, response.ErrInvalidPassword, resp)
	resp = test.Do(t, r, http.MethodPost, "/api/user/login", "", LoginReq{Username: "ghost", Password: test.Password})
	test.ErrorEqual(t, response.ErrInvalidPassword, resp)

	require.NoError(t, db.Model(u).Update("is_active", false).Error)
	resp = test.Do(t, r, http.MethodPost, "/api/user/login", "", LoginReq{Username: "admin", Password: test.Password})
	test.ErrorEqual(t, response.ErrForbidden, resp)
}

func TestLogoutRevokesToken(t *testing.T) {
	db, r := setup(t)
	test.SetupRedis(t)
	test.CreateUser(t, db, "alice")

	resp := test.Do(t, r, http.MethodPost, "/api/user/login", "", LoginReq{Username: "alice", Password: test.Password})
	token := test.Data[struct {
		Token string `json:"token"`
	}](t, resp).Token

	test.NoError(t, test.Do(t, r, http.MethodGet, "/api/user/profile", token, nil))
	test.NoError(t, test.Do(t, r, http.MethodPost, "/api/user/logout", token, nil))

	resp = test.Do(t, r, http.MethodGet, "/api/user/profile", token, nil)
	test.ErrorEqual(t, response.ErrTokenInvalid, resp)
}

func TestProfile(t *testing.T) {
	db, r := setup(t)
	u, student := test.CreateStudent(t, db, "alice")
	test.CreateProject(t, db, model.Project{Title: "mine"}, student)
	teacherUser, _ := test.CreateTeacher(t, db, "wang")

	data := test.Data[struct {
		Account  account             `json:"account"`
		Projects []model.ProjectCard `json:"projects"`
	}](t, test.Do(t, r, http.MethodGet, "/api/user/profile", test.Token(u), nil))
	require.Equal(t, "alice", data.Account.Username)
	require.Equal(t, student.ID, data.Account.Student.ID)
	require.Len(t, data.Projects, 1)

	data = test.Data[struct {
		Account  account             `json:"account"`
		Projects []model.ProjectCard `json:"projects"`
	}](t, test.Do(t, r, http.MethodGet, "/api/user/profile", test.Token(teacherUser), nil))
	require.NotNil(t, data.Account.Teacher)
	require.Equal(t, "CS", data.Account.Teacher.Department)
	require.Empty(t, data.Projects)

	test.ErrorEqual(t, response.ErrUnauthorized, test.Do(t, r, http.MethodGet, "/api/user/profile", "", nil))
}

func TestChangePassword(t *testing.T) {
	db, r := setup(t)
	u := test.CreateUser(t, db, "alice")
	token := test.Token(u)

	resp := test.Do(t, r, http.MethodPut, "/api/user/password", token, ChangePasswordReq{OldPassword: "nope", NewPassword: "newpass123"})
	test.ErrorEqual(t, response.ErrInvalidPassword, resp)

	resp = test.Do(t, r, http.MethodPut, "/api/user/password", token, ChangePasswordReq{OldPassword: test.Password, NewPassword: "short1"})
	test.ErrorEqual(t, response.ErrPasswordWeak, resp)

	resp = test.Do(t, r, http.MethodPut, "/api/user/password", token, ChangePasswordReq{OldPassword: test.Password, NewPassword: "newpass123"})
	test.NoError(t, resp)

	resp = test.Do(t, r, http.MethodPost, "/api/user/login", "", LoginReq{Username: "alice", Password: "newpass123"})
	test.NoError(t, resp)
}

// 浏览器只带 cookie 时也能保持登录
func TestSessionCookie(t *testing.T) {
	_, r := setup(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	post := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		res, err := client.Post(srv.URL+path, "application/json", bytes.NewReader(data))
		require.NoError(t, err)
		return res
	}
	get := func(path string) response.ResponseBody {
		res, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		defer res.Body.Close()
		var body response.ResponseBody
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		return body
	}

	res := post("/api/user/register", registerReq("cookie"))
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var found bool
	for _, c := range res.Cookies() {
		if c.Name == session.CookieName {
			found = true
			require.True(t, c.HttpOnly)
		}
	}
	require.True(t, found)

	test.NoError(t, get("/api/user/profile"))

	res = post("/api/user/logout", nil)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	test.ErrorEqual(t, response.ErrUnauthorized, get("/api/user/profile"))
}
