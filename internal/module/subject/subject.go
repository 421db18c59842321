package subject

import (
	"strings"

	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubjectReq struct {
	Name        string `json:"name" binding:"required,max=200"`
	Code        string `json:"code" binding:"max=20"`
	Description string `json:"description"`
}

type subjectItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	ProjectCount int64  `json:"project_count"` // 已发布项目数
}

// List 全部学科及已发布项目数量
func List(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	var subjects []model.Subject
	if err := db.Order("name").Order("id").Find(&subjects).Error; err != nil {
		log.Error("查询学科失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	counts, err := model.PublishedCounts(db, "subject_id")
	if err != nil {
		log.Error("统计学科项目失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	items := make([]subjectItem, 0, len(subjects))
	for _, s := range subjects {
		items = append(items, subjectItem{
			ID:           s.ID,
			Name:         s.Name,
			Code:         s.Code,
			Description:  s.Description,
			ProjectCount: counts[s.ID],
		})
	}
	response.Success(c, gin.H{"subjects": items})
}

func Create(c *gin.Context) {
	var req SubjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	subject := model.Subject{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.TrimSpace(req.Code),
		Description: req.Description,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&subject).Error; err != nil {
		log.Error("创建学科失败", "error", err, "name", subject.Name)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	log.Info("学科创建成功", "subject_id", subject.ID, "name", subject.Name)
	response.Success(c, subject)
}

func Update(c *gin.Context) {
	id, err := tools.ParamID(c, "id")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	var req SubjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	var subject model.Subject
	err = db.First(&subject, id).Error
	switch {
	case database.IsNotFound(err):
		response.Fail(c, response.ErrNotFound.WithTips("学科不存在"))
		return
	case err != nil:
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = strings.TrimSpace(req.Code)
	subject.Description = req.Description
	if err := db.Save(&subject).Error; err != nil {
		log.Error("修改学科失败", "error", err, "subject_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, subject)
}

// Delete 删除学科，相关项目保留，学科置空
func Delete(c *gin.Context) {
	id, err := tools.ParamID(c, "id")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var deleted int64
	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).
			Where("subject_id = ?", id).
			UpdateColumn("subject_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Subject{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		log.Error("删除学科失败", "error", err, "subject_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if deleted == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("学科不存在"))
		return
	}

	log.Info("学科已删除", "subject_id", id)
	response.Success(c)
}
