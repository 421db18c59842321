package project

import (
	"time"

	"project-portal/internal/global/access"
	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/global/storage"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const similarLimit = 3

// moderationInfo 审核信息，只给作者和审核人看
type moderationInfo struct {
	Comment     string              `json:"comment"`
	ModeratedBy *model.TeacherBrief `json:"moderated_by"`
	ModeratedAt *time.Time          `json:"moderated_at"`
}

type detailResp struct {
	Project    model.ProjectCard   `json:"project"`
	Moderation *moderationInfo     `json:"moderation,omitempty"`
	Comments   []model.CommentView `json:"comments"`
	Similar    []model.ProjectCard `json:"similar"`
	CanEdit    bool                `json:"can_edit"`
}

// Detail 项目详情，每次成功读取浏览量加一
func Detail(c *gin.Context) {
	ident, err := access.Optional(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	id, err := tools.ParamID(c, "id")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	var project model.Project
	err = db.Scopes(model.WithCard).Preload("ModeratedBy.User").First(&project, id).Error
	switch {
	case database.IsNotFound(err):
		response.Fail(c, response.ErrNotFound.WithTips("项目不存在"))
		return
	case err != nil:
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	// 无权查看的未发布项目与不存在一样处理
	visible, err := access.CanView(db, ident, &project)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if !visible {
		response.Fail(c, response.ErrNotFound.WithTips("项目不存在"))
		return
	}

	if err := bump(db, project.ID, "views"); err != nil {
		log.Error("更新浏览量失败", "error", err, "project_id", project.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	project.Views++

	comments, err := model.CommentsOf(db, project.ID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	similar, err := similarProjects(db, &project)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	resp := detailResp{
		Project:  project.Card(),
		Comments: comments,
		Similar:  model.Cards(similar),
	}

	if ident != nil {
		if resp.CanEdit, err = ident.CanEdit(db, project.ID); err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		if resp.CanEdit || ident.CanModerate() {
			resp.Moderation = &moderationInfo{
				Comment:     project.ModerationComment,
				ModeratedBy: project.ModeratedBy.Brief(),
				ModeratedAt: project.ModeratedAt,
			}
		}
	}
	response.Success(c, resp)
}

// Download 下载附件，已发布项目计数；作者和审核人可以下载未发布项目的附件，不计数
func Download(c *gin.Context) {
	ident, err := access.Optional(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	project, err := loadProject(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	published := project.Status == model.StatusPublished
	if !published {
		visible, err := access.CanView(db, ident, project)
		if err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		if !visible {
			response.Fail(c, response.ErrNotFound.WithTips("项目不存在"))
			return
		}
	}
	if !project.HasFile() {
		response.Fail(c, response.ErrNotFound.WithTips("该项目没有附件"))
		return
	}

	if published {
		if err := bump(db, project.ID, "downloads"); err != nil {
			log.Error("更新下载量失败", "error", err, "project_id", project.ID)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
	}

	if err := storage.Default.Serve(c, project.FileKey, project.FileName); err != nil {
		if errors.Is(err, storage.ErrNoFile) {
			log.Warn("附件文件丢失", "project_id", project.ID, "key", project.FileKey)
			response.Fail(c, response.ErrNotFound.WithTips("附件文件不存在"))
			return
		}
		log.Error("发送附件失败", "error", err, "project_id", project.ID)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
	}
}

// bump 计数加一，不修改 updated_at
func bump(db *gorm.DB, id uint, column string) error {
	return db.Model(&model.Project{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

// similarProjects 同学科的其他已发布项目
func similarProjects(db *gorm.DB, p *model.Project) ([]model.Project, error) {
	similar := []model.Project{}
	if p.SubjectID == nil {
		return similar, nil
	}
	err := db.Scopes(model.Published, model.WithCard, model.Newest).
		Where("project.subject_id = ? AND project.id <> ?", *p.SubjectID, p.ID).
		Limit(similarLimit).
		Find(&similar).Error
	return similar, err
}
