package access

import (
	"net/http/httptest"
	"testing"

	"project-portal/internal/global/jwt"
	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	db := test.Setup(t)
	plain := test.CreateUser(t, db, "plain")
	_, student := test.CreateStudent(t, db, "stu")
	_, teacher := test.CreateTeacher(t, db, "tea")
	staff := test.CreateStaff(t, db, "admin")

	id, err := Resolve(db, plain.ID)
	require.NoError(t, err)
	require.False(t, id.IsStudent())
	require.False(t, id.IsTeacher())
	require.False(t, id.CanModerate())
	require.Nil(t, id.ModeratorID())

	id, err = Resolve(db, student.UserID)
	require.NoError(t, err)
	require.True(t, id.IsStudent())
	require.Equal(t, student.ID, id.Student.ID)

	id, err = Resolve(db, teacher.UserID)
	require.NoError(t, err)
	require.True(t, id.CanModerate())
	require.Equal(t, teacher.ID, *id.ModeratorID())

	id, err = Resolve(db, staff.ID)
	require.NoError(t, err)
	require.True(t, id.IsStaff())
	require.True(t, id.CanModerate())
	require.Nil(t, id.ModeratorID())

	_, err = Resolve(db, 9999)
	require.Error(t, err)

	var nobody *Identity
	require.False(t, nobody.IsStaff())
	require.False(t, nobody.CanModerate())
}

func TestCoAuthorAndVisibility(t *testing.T) {
	db := test.Setup(t)
	authorUser, author := test.CreateStudent(t, db, "author")
	otherUser, _ := test.CreateStudent(t, db, "other")
	teacherUser, _ := test.CreateTeacher(t, db, "teacher")
	staffUser := test.CreateStaff(t, db, "staff")

	pending := test.CreateProject(t, db, model.Project{Title: "p", Status: model.StatusPending}, author)
	published := test.CreateProject(t, db, model.Project{Title: "q", Status: model.StatusPublished}, author)

	ok, err := IsCoAuthor(db, pending.ID, authorUser.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = IsCoAuthor(db, pending.ID, otherUser.ID)
	require.NoError(t, err)
	require.False(t, ok)

	resolve := func(userID uint) *Identity {
		id, err := Resolve(db, userID)
		require.NoError(t, err)
		return id
	}

	cases := []struct {
		name    string
		ident   *Identity
		project *model.Project
		visible bool
		edit    bool
	}{
		{"匿名用户看已发布", nil, published, true, false},
		{"匿名用户看待审核", nil, pending, false, false},
		{"作者", resolve(authorUser.ID), pending, true, true},
		{"其他学生", resolve(otherUser.ID), pending, false, false},
		{"教师", resolve(teacherUser.ID), pending, true, false},
		{"管理员", resolve(staffUser.ID), pending, true, true},
	}
	for _, c := range cases {
		visible, err := CanView(db, c.ident, c.project)
		require.NoError(t, err, c.name)
		require.Equal(t, c.visible, visible, c.name)

		if c.ident != nil {
			edit, err := c.ident.CanEdit(db, c.project.ID)
			require.NoError(t, err, c.name)
			require.Equal(t, c.edit, edit, c.name)
		}
	}
}

func TestCurrent(t *testing.T) {
	db := test.Setup(t)
	user := test.CreateUser(t, db, "alice")

	newContext := func(userID uint, withPayload bool) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		if withPayload {
			jwt.SetUserPayload(c, &jwt.Claims{Payload: jwt.Payload{UserID: userID}})
		}
		return c
	}

	_, err := Current(newContext(0, false))
	require.ErrorIs(t, err, response.ErrUnauthorized)

	id, err := Optional(newContext(0, false))
	require.NoError(t, err)
	require.Nil(t, id)

	c := newContext(user.ID, true)
	id, err = Current(c)
	require.NoError(t, err)
	require.Equal(t, "alice", id.User.Username)
	again, err := Current(c)
	require.NoError(t, err)
	require.Same(t, id, again)

	// token 里的账号已被删除
	_, err = Current(newContext(9999, true))
	require.ErrorIs(t, err, response.ErrTokenInvalid)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	_, err = Current(newContext(user.ID, true))
	require.ErrorIs(t, err, response.ErrForbidden)
}
