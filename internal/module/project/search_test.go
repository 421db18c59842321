package project

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/test"

	"github.com/stretchr/testify/require"
)

type listData struct {
	Projects   []model.ProjectCard `json:"projects"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
	Facets     struct {
		Subjects []model.SubjectBrief `json:"subjects"`
		Teachers []model.TeacherBrief `json:"teachers"`
		Years    []int                `json:"years"`
	} `json:"facets"`
}

func TestLikePattern(t *testing.T) {
	require.Equal(t, "%go%", likePattern("Go"))
	require.Equal(t, "%100!%%", likePattern("100%"))
	require.Equal(t, "%a!_b!!%", likePattern("a_b!"))
}

func TestPageOf(t *testing.T) {
	require.Equal(t, 1, pageOf("", 3))
	require.Equal(t, 1, pageOf("abc", 3))
	require.Equal(t, 1, pageOf("-2", 3))
	require.Equal(t, 2, pageOf("2", 3))
	require.Equal(t, 3, pageOf("99", 3))
	require.Equal(t, 1, pageOf("5", 0))
}

func TestList(t *testing.T) {
	db, r := setup(t)
	_, student := test.CreateStudent(t, db, "alice")
	_, teacher := test.CreateTeacher(t, db, "wang")
	dbSubject := test.CreateSubject(t, db, "数据库")
	netSubject := test.CreateSubject(t, db, "网络")

	test.CreateProject(t, db, model.Project{Title: "Go 网关", Status: model.StatusPublished, SubjectID: &netSubject.ID, TeacherID: &teacher.ID, Year: 2023}, student)
	test.CreateProject(t, db, model.Project{Title: "索引优化", Keywords: "btree,go", Status: model.StatusPublished, SubjectID: &dbSubject.ID, Year: 2024}, student)
	test.CreateProject(t, db, model.Project{Title: "100% 覆盖", Status: model.StatusPublished, Year: 2024}, student)
	test.CreateProject(t, db, model.Project{Title: "Go 草稿", Status: model.StatusPending, SubjectID: &netSubject.ID}, student)

	data := test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list", "", nil))
	require.EqualValues(t, 3, data.Total)
	require.Equal(t, 1, data.Page)
	require.Equal(t, "100% 覆盖", data.Projects[0].Title)
	require.Len(t, data.Facets.Subjects, 2)
	require.Len(t, data.Facets.Teachers, 1)
	require.Equal(t, []int{2024, 2023}, data.Facets.Years)

	// 关键词匹配标题、描述和关键字段，不区分大小写
	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list?q=GO", "", nil))
	require.EqualValues(t, 2, data.Total)
	require.Len(t, data.Facets.Subjects, 2)

	// % 按字面匹配
	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list?q=100%25", "", nil))
	require.EqualValues(t, 1, data.Total)

	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, fmt.Sprintf("/api/project/list?subject=%d", netSubject.ID), "", nil))
	require.EqualValues(t, 1, data.Total)
	require.Equal(t, "Go 网关", data.Projects[0].Title)

	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, fmt.Sprintf("/api/project/list?teacher=%d&year=2024", teacher.ID), "", nil))
	require.Zero(t, data.Total)
	require.Empty(t, data.Projects)
	require.Empty(t, data.Facets.Years)

	resp := test.Do(t, r, http.MethodGet, "/api/project/list?year=abc", "", nil)
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)
}

func TestListPagination(t *testing.T) {
	db, r := setup(t)
	_, student := test.CreateStudent(t, db, "alice")
	for i := 0; i < PageSize+2; i++ {
		test.CreateProject(t, db, model.Project{Title: fmt.Sprintf("p%02d", i), Status: model.StatusPublished}, student)
	}

	data := test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list", "", nil))
	require.Len(t, data.Projects, PageSize)
	require.Equal(t, 2, data.TotalPages)

	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list?page=2", "", nil))
	require.Len(t, data.Projects, 2)
	require.Equal(t, "p00", data.Projects[1].Title)

	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list?page=40", "", nil))
	require.Equal(t, 2, data.Page)

	data = test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list?page=x", "", nil))
	require.Equal(t, 1, data.Page)
}

func TestListEmptyPage(t *testing.T) {
	_, r := setup(t)
	data := test.Data[listData](t, test.Do(t, r, http.MethodGet, "/api/project/list?page=5", "", nil))
	require.Equal(t, 1, data.Page)
	require.Equal(t, 0, data.TotalPages)
	require.Empty(t, data.Projects)
}

func TestQuickSearch(t *testing.T) {
	db, r := setup(t)
	_, student := test.CreateStudent(t, db, "alice")
	for i := 0; i < 7; i++ {
		test.CreateProject(t, db, model.Project{Title: fmt.Sprintf("区块链 %d", i), Status: model.StatusPublished}, student)
	}
	test.CreateProject(t, db, model.Project{Title: "区块链 草稿"}, student)
	test.CreateProject(t, db, model.Project{Title: "其他", Description: "区块链", Status: model.StatusPublished}, student)

	type results struct {
		Results []struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"results"`
	}

	data := test.Data[results](t, test.Do(t, r, http.MethodGet, "/api/search?q="+url.QueryEscape("区"), "", nil))
	require.Empty(t, data.Results)

	data = test.Data[results](t, test.Do(t, r, http.MethodGet, "/api/search?q="+url.QueryEscape("区块"), "", nil))
	require.Len(t, data.Results, quickSearchSize)
	require.Equal(t, "区块链 6", data.Results[0].Title)
	require.Equal(t, fmt.Sprintf("/api/project/%d", data.Results[0].ID), data.Results[0].URL)
}

func TestHome(t *testing.T) {
	db, r := setup(t)
	_, student := test.CreateStudent(t, db, "alice")
	test.CreateTeacher(t, db, "wang")
	test.CreateSubject(t, db, "数据库")

	for i := 0; i < 8; i++ {
		test.CreateProject(t, db, model.Project{Title: fmt.Sprintf("p%d", i), Status: model.StatusPublished, Views: uint(i * 10)}, student)
	}
	test.CreateProject(t, db, model.Project{Title: "pending", Views: 1000}, student)

	type home struct {
		Latest  []model.ProjectCard `json:"latest"`
		Popular []model.ProjectCard `json:"popular"`
		Stats   struct {
			Projects int64 `json:"projects"`
			Students int64 `json:"students"`
			Teachers int64 `json:"teachers"`
			Subjects int64 `json:"subjects"`
		} `json:"stats"`
	}
	data := test.Data[home](t, test.Do(t, r, http.MethodGet, "/api/project/home", "", nil))
	require.Len(t, data.Latest, homeLatest)
	require.Equal(t, "p7", data.Latest[0].Title)
	require.Len(t, data.Popular, homePopular)
	require.Equal(t, "p7", data.Popular[0].Title)
	require.EqualValues(t, 8, data.Stats.Projects)
	require.EqualValues(t, 1, data.Stats.Students)
	require.EqualValues(t, 1, data.Stats.Teachers)
	require.EqualValues(t, 1, data.Stats.Subjects)
}
