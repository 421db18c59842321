package teacher

import (
	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReq 给已有账号添加教师身份
type CreateReq struct {
	UserID     uint   `json:"user_id" binding:"required"`
	Department string `json:"department" binding:"max=200"`
	Position   string `json:"position" binding:"max=200"`
	Bio        string `json:"bio"`
}

type teacherItem struct {
	*model.TeacherBrief
	Bio          string `json:"bio"`
	ProjectCount int64  `json:"project_count"`
}

// List 全部教师及指导的已发布项目数量
func List(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	var teachers []model.Teacher
	if err := db.Preload("User").Order("id").Find(&teachers).Error; err != nil {
		log.Error("查询教师失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	counts, err := model.PublishedCounts(db, "teacher_id")
	if err != nil {
		log.Error("统计教师项目失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	items := make([]teacherItem, 0, len(teachers))
	for i := range teachers {
		items = append(items, teacherItem{
			TeacherBrief: teachers[i].Brief(),
			Bio:          teachers[i].Bio,
			ProjectCount: counts[teachers[i].ID],
		})
	}
	response.Success(c, gin.H{"teachers": items})
}

func Create(c *gin.Context) {
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	teacher, err := Link(db, req.UserID, model.Teacher{
		Department: req.Department,
		Position:   req.Position,
		Bio:        req.Bio,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("教师创建成功", "teacher_id", teacher.ID, "user_id", req.UserID)
	response.Success(c, teacher.Brief())
}

// Link 为账号建立教师档案，命令行工具也使用
func Link(db *gorm.DB, userID uint, profile model.Teacher) (*model.Teacher, error) {
	var user model.User
	err := db.First(&user, userID).Error
	switch {
	case database.IsNotFound(err):
		return nil, response.ErrNotFound.WithTips("账号不存在")
	case err != nil:
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	profile.UserID = user.ID
	if err := db.Omit("User").Create(&profile).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, response.ErrAlreadyExists.WithOrigin(err).WithTips("该账号已是教师")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	profile.User = user
	return &profile, nil
}

// Delete 删除教师档案，项目的指导教师和审核人置空
func Delete(c *gin.Context) {
	id, err := tools.ParamID(c, "id")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var deleted int64
	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for _, column := range []string{"teacher_id", "moderated_by_id"} {
			if err := tx.Model(&model.Project{}).
				Where(column+" = ?", id).
				UpdateColumn(column, nil).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Teacher{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		log.Error("删除教师失败", "error", err, "teacher_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if deleted == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("教师不存在"))
		return
	}

	log.Info("教师已删除", "teacher_id", id)
	response.Success(c)
}
