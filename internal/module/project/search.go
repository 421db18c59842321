package project

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	PageSize        = 9
	quickSearchMin  = 2 // 少于两个字符不搜索
	quickSearchSize = 5
	homeLatest      = 6
	homePopular     = 3
)

// listQuery 列表筛选条件，数字参数为空表示不筛选
type listQuery struct {
	Q       string `form:"q"`
	Subject uint   `form:"subject"`
	Teacher uint   `form:"teacher"`
	Year    int    `form:"year"`
}

type facets struct {
	Subjects []model.SubjectBrief  `json:"subjects"`
	Teachers []*model.TeacherBrief `json:"teachers"`
	Years    []int                 `json:"years"`
}

type listResp struct {
	Projects   []model.ProjectCard `json:"projects"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
	Facets     facets              `json:"facets"`
}

// likePattern 转义 LIKE 通配符，配合 ESCAPE '!' 使用
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}

// filter 已发布项目加上全部筛选条件
func (q listQuery) filter(db *gorm.DB) *gorm.DB {
	db = db.Model(&model.Project{}).Scopes(model.Published)
	if q.Q != "" {
		like := likePattern(q.Q)
		db = db.Where("(LOWER(project.title) LIKE ? ESCAPE '!' OR LOWER(project.description) LIKE ? ESCAPE '!' OR LOWER(project.keywords) LIKE ? ESCAPE '!')",
			like, like, like)
	}
	if q.Subject != 0 {
		db = db.Where("project.subject_id = ?", q.Subject)
	}
	if q.Teacher != 0 {
		db = db.Where("project.teacher_id = ?", q.Teacher)
	}
	if q.Year != 0 {
		db = db.Where("project.year = ?", q.Year)
	}
	return db
}

// pageOf 页码无效或没有结果时取第一页，超出范围取最后一页
func pageOf(raw string, totalPages int) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || totalPages == 0 {
		return 1
	}
	return min(page, totalPages)
}

// List 已发布项目列表，支持关键词、学科、教师、年份筛选
func List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		log.Warn("绑定查询参数失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err).WithTips("筛选参数必须是数字"))
		return
	}
	q.Q = strings.TrimSpace(q.Q)

	db := database.DB.WithContext(c.Request.Context())

	var total int64
	if err := q.filter(db).Count(&total).Error; err != nil {
		log.Error("获取项目总数失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	totalPages := int((total + PageSize - 1) / PageSize)
	page := pageOf(c.Query("page"), totalPages)

	var projects []model.Project
	err := q.filter(db).
		Scopes(model.WithCard, model.Newest).
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&projects).Error
	if err != nil {
		log.Error("获取项目列表失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	f, err := q.facets(db)
	if err != nil {
		log.Error("获取筛选项失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, listResp{
		Projects:   model.Cards(projects),
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages,
		Facets:     *f,
	})
}

// facets 所有匹配项目（不分页）中出现过的学科、教师和年份
func (q listQuery) facets(db *gorm.DB) (*facets, error) {
	f := &facets{
		Subjects: []model.SubjectBrief{},
		Teachers: []*model.TeacherBrief{},
		Years:    []int{},
	}

	var subjects []model.Subject
	if err := db.Where("id IN (?)", q.filter(db).Select("project.subject_id")).
		Order("name").Find(&subjects).Error; err != nil {
		return nil, err
	}
	for i := range subjects {
		f.Subjects = append(f.Subjects, *subjects[i].Brief())
	}

	var teachers []model.Teacher
	if err := db.Preload("User").
		Where("id IN (?)", q.filter(db).Select("project.teacher_id")).
		Order("id").Find(&teachers).Error; err != nil {
		return nil, err
	}
	for i := range teachers {
		f.Teachers = append(f.Teachers, teachers[i].Brief())
	}

	if err := q.filter(db).Distinct().Order("project.year DESC").
		Pluck("project.year", &f.Years).Error; err != nil {
		return nil, err
	}
	return f, nil
}

type searchResult struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Year  int    `json:"year"`
	URL   string `json:"url"`
}

// QuickSearch 按标题搜索已发布项目，给搜索框下拉提示用
func QuickSearch(c *gin.Context) {
	q := c.Query("q")
	results := []searchResult{}
	if utf8.RuneCountInString(q) < quickSearchMin {
		response.Success(c, gin.H{"results": results})
		return
	}

	var projects []model.Project
	err := database.DB.WithContext(c.Request.Context()).
		Scopes(model.Published, model.Newest).
		Where("LOWER(project.title) LIKE ? ESCAPE '!'", likePattern(q)).
		Limit(quickSearchSize).
		Find(&projects).Error
	if err != nil {
		log.Error("搜索项目失败", "error", err, "q", q)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	for i := range projects {
		results = append(results, searchResult{
			ID:    projects[i].ID,
			Title: projects[i].Title,
			Year:  projects[i].Year,
			URL:   projects[i].URL(),
		})
	}
	response.Success(c, gin.H{"results": results})
}

type counters struct {
	Projects int64 `json:"projects"`
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Subjects int64 `json:"subjects"`
}

// Home 首页：最新和最热的已发布项目以及站点统计
func Home(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	var latest, popular []model.Project
	if err := db.Scopes(model.Published, model.WithCard, model.Newest).
		Limit(homeLatest).Find(&latest).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if err := db.Scopes(model.Published, model.WithCard).
		Order("project.views DESC").Order("project.id DESC").
		Limit(homePopular).Find(&popular).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var stats counters
	for _, item := range []struct {
		model any
		dst   *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&model.Project{}, &stats.Projects, model.Published},
		{&model.Student{}, &stats.Students, nil},
		{&model.Teacher{}, &stats.Teachers, nil},
		{&model.Subject{}, &stats.Subjects, nil},
	} {
		tx := db.Model(item.model)
		if item.scope != nil {
			tx = tx.Scopes(item.scope)
		}
		if err := tx.Count(item.dst).Error; err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
	}

	response.Success(c, gin.H{
		"latest":  model.Cards(latest),
		"popular": model.Cards(popular),
		"stats":   stats,
	})
}
