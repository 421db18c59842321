package teacher

import (
	"fmt"
	"net/http"
	"testing"

	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestTeachers(t *testing.T) {
	db := test.Setup(t)
	selfInit()
	r := test.NewRouter(func(r *gin.RouterGroup) {
		(&ModuleTeacher{}).InitRouter(r)
	})
	staff := test.CreateStaff(t, db, "admin")
	plain := test.CreateUser(t, db, "li")
	_, student := test.CreateStudent(t, db, "alice")

	resp := test.Do(t, r, http.MethodPost, "/api/teacher", test.Token(staff), CreateReq{UserID: plain.ID, Department: "计算机系", Position: "副教授"})
	brief := test.Data[model.TeacherBrief](t, resp)
	require.Equal(t, "计算机系", brief.Department)

	resp = test.Do(t, r, http.MethodPost, "/api/teacher", test.Token(staff), CreateReq{UserID: plain.ID})
	test.ErrorEqual(t, response.ErrAlreadyExists, resp)
	resp = test.Do(t, r, http.MethodPost, "/api/teacher", test.Token(staff), CreateReq{UserID: 999})
	test.ErrorEqual(t, response.ErrNotFound, resp)
	resp = test.Do(t, r, http.MethodPost, "/api/teacher", test.Token(plain), CreateReq{UserID: plain.ID})
	test.ErrorEqual(t, response.ErrForbidden, resp)

	test.CreateProject(t, db, model.Project{Title: "a", Status: model.StatusPublished, TeacherID: &brief.ID}, student)
	test.CreateProject(t, db, model.Project{Title: "b", Status: model.StatusPublished, TeacherID: &brief.ID}, student)

	list := test.Data[struct {
		Teachers []struct {
			ID           uint   `json:"id"`
			Department   string `json:"department"`
			ProjectCount int64  `json:"project_count"`
		} `json:"teachers"`
	}](t, test.Do(t, r, http.MethodGet, "/api/teacher/list", "", nil))
	require.Len(t, list.Teachers, 1)
	require.Equal(t, brief.ID, list.Teachers[0].ID)
	require.EqualValues(t, 2, list.Teachers[0].ProjectCount)
}

func TestDeleteClearsReferences(t *testing.T) {
	db := test.Setup(t)
	selfInit()
	r := test.NewRouter(func(r *gin.RouterGroup) {
		(&ModuleTeacher{}).InitRouter(r)
	})
	staff := test.CreateStaff(t, db, "admin")
	_, teacher := test.CreateTeacher(t, db, "wang")
	_, student := test.CreateStudent(t, db, "alice")
	p := test.CreateProject(t, db, model.Project{
		Title:         "a",
		Status:        model.StatusPublished,
		TeacherID:     &teacher.ID,
		ModeratedByID: &teacher.ID,
	}, student)

	path := fmt.Sprintf("/api/teacher/%d", teacher.ID)
	test.NoError(t, test.Do(t, r, http.MethodDelete, path, test.Token(staff), nil))

	var got model.Project
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Nil(t, got.TeacherID)
	require.Nil(t, got.ModeratedByID)

	// 账号本身保留
	var n int64
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", teacher.UserID).Count(&n).Error)
	require.EqualValues(t, 1, n)

	test.ErrorEqual(t, response.ErrNotFound, test.Do(t, r, http.MethodDelete, path, test.Token(staff), nil))
}
