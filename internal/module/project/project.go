package project

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"project-portal/internal/global/access"
	"project-portal/internal/global/cache"
	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/global/storage"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Create 学生提交项目，直接进入待审核
func Create(c *gin.Context) {
	ctx := c.Request.Context()
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !ident.IsStudent() {
		response.Fail(c, response.ErrForbidden.WithTips("只有学生可以提交项目"))
		return
	}

	var req createForm
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("绑定提交项目请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	db := database.DB.WithContext(ctx)
	subjectID, teacherID := optionalID(req.SubjectID), optionalID(req.TeacherID)
	if err := checkRefs(db, subjectID, teacherID); err != nil {
		response.Fail(c, err)
		return
	}
	students, err := loadStudents(db, req.StudentIDs, ident.Student)
	if err != nil {
		response.Fail(c, err)
		return
	}

	project := model.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		SubjectID:   subjectID,
		TeacherID:   teacherID,
		Year:        req.Year,
		Keywords:    req.Keywords,
		Status:      model.StatusPending,
		Students:    students,
	}

	var obj *storage.Object
	if req.File != nil {
		if obj, err = saveUpload(ctx, req.File); err != nil {
			response.Fail(c, err)
			return
		}
		project.FileKey, project.FileName = obj.Key, obj.Name
	}

	// 项目、作者关系、文件 key 一起提交
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Students.*").Create(&project).Error
	})
	if err != nil {
		discardUpload(ctx, obj)
		log.Error("创建项目失败", "error", err, "title", project.Title)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	cache.Forget(ctx, cache.PendingCountKey)

	log.Info("项目提交成功",
		"project_id", project.ID,
		"user_id", ident.User.ID,
		"authors", len(students))

	card, err := loadCard(db, project.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, card)
}

// Edit 作者或管理员修改项目
func Edit(c *gin.Context) {
	ctx := c.Request.Context()
	ident, project, err := editable(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req editForm
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("绑定修改项目请求失败", "error", err, "project_id", project.ID)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	staff := ident.IsStaff()
	if !staff {
		switch project.Status {
		case model.StatusRejected, model.StatusArchived:
			response.Fail(c, response.ErrForbidden.WithTips("项目已被拒绝或归档，不能再修改"))
			return
		}
		if req.Status != nil {
			response.Fail(c, response.ErrForbidden.WithTips("仅管理员可以直接修改状态"))
			return
		}
	}

	db := database.DB.WithContext(ctx)
	var author *model.Student
	if !staff {
		author = ident.Student
	}
	updates, students, err := req.changes(db, author)
	if err != nil {
		response.Fail(c, err)
		return
	}

	status := project.Status
	switch {
	case req.Status != nil:
		if !req.Status.Valid() {
			response.Fail(c, response.ErrInvalidRequest.WithTips("无效的状态"))
			return
		}
		status = *req.Status
	case !staff && project.Status == model.StatusPublished:
		// 已发布的项目被作者修改后需要重新审核
		status = model.StatusPending
	}
	if status != project.Status {
		updates["status"] = status
		if status == model.StatusPublished && project.PublishedAt == nil {
			updates["published_at"] = time.Now()
		}
	}

	if err := saveChanges(ctx, project, updates, students, req.File); err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("项目修改成功",
		"project_id", project.ID,
		"user_id", ident.User.ID,
		"status", status)

	card, err := loadCard(db, project.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, card)
}

// Resubmit 作者修改后重新提交审核，可同时修改内容
func Resubmit(c *gin.Context) {
	ctx := c.Request.Context()
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	project, err := loadProject(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	db := database.DB.WithContext(ctx)
	isAuthor, err := access.IsCoAuthor(db, project.ID, ident.User.ID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if !isAuthor {
		response.Fail(c, response.ErrForbidden.WithTips("只有项目作者可以重新提交"))
		return
	}

	var req editForm
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if req.Status != nil {
		response.Fail(c, response.ErrForbidden.WithTips("仅管理员可以直接修改状态"))
		return
	}

	from := project.Status
	if err := project.Resubmit(); err != nil {
		response.Fail(c, response.ErrInvalidTransition.WithOrigin(err).WithTips("只有草稿或退回修改的项目可以重新提交"))
		return
	}

	updates, students, err := req.changes(db, ident.Student)
	if err != nil {
		response.Fail(c, err)
		return
	}
	updates["status"] = project.Status
	updates["moderated_by_id"] = nil
	updates["moderation_comment"] = ""

	// 以提交前的状态为条件，避免覆盖并发的审核结果
	if err := saveChanges(ctx, &model.Project{ID: project.ID, Status: from, FileKey: project.FileKey}, updates, students, req.File); err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("项目重新提交审核", "project_id", project.ID, "user_id", ident.User.ID)

	card, err := loadCard(db, project.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, card)
}

// Mine 当前学生参与的全部项目
func Mine(c *gin.Context) {
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !ident.IsStudent() {
		response.Fail(c, response.ErrForbidden.WithTips("只有学生有自己的项目"))
		return
	}

	var projects []model.Project
	err = database.DB.WithContext(c.Request.Context()).
		Scopes(model.AuthoredBy(ident.Student.ID), model.WithCard, model.Newest).
		Find(&projects).Error
	if err != nil {
		log.Error("查询我的项目失败", "error", err, "user_id", ident.User.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, gin.H{"projects": model.Cards(projects)})
}

// editable 读取路径中的项目并检查当前用户能否编辑
func editable(c *gin.Context) (*access.Identity, *model.Project, error) {
	ident, err := access.Current(c)
	if err != nil {
		return nil, nil, err
	}
	project, err := loadProject(c)
	if err != nil {
		return nil, nil, err
	}
	ok, err := ident.CanEdit(database.DB.WithContext(c.Request.Context()), project.ID)
	if err != nil {
		return nil, nil, response.ErrDatabase.WithOrigin(err)
	}
	if !ok {
		return nil, nil, response.ErrForbidden.WithTips("只有项目作者或管理员可以修改")
	}
	return ident, project, nil
}

func loadProject(c *gin.Context) (*model.Project, error) {
	id, err := tools.ParamID(c, "id")
	if err != nil {
		return nil, response.ErrInvalidRequest.WithOrigin(err)
	}
	var project model.Project
	err = database.DB.WithContext(c.Request.Context()).First(&project, id).Error
	switch {
	case database.IsNotFound(err):
		return nil, response.ErrNotFound.WithTips("项目不存在")
	case err != nil:
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &project, nil
}

func loadCard(db *gorm.DB, id uint) (*model.ProjectCard, error) {
	var project model.Project
	if err := db.Scopes(model.WithCard).First(&project, id).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	card := project.Card()
	return &card, nil
}

// saveChanges 在一个事务里写入字段、作者和新附件；以 p.Status 为条件更新，
// 状态已被其他请求修改时返回 ErrInvalidTransition
func saveChanges(ctx context.Context, p *model.Project, updates map[string]any, students []model.Student, fh *multipart.FileHeader) error {
	var obj *storage.Object
	if fh != nil {
		var err error
		if obj, err = saveUpload(ctx, fh); err != nil {
			return err
		}
		updates["file_key"], updates["file_name"] = obj.Key, obj.Name
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&model.Project{}).
				Where("id = ? AND status = ?", p.ID, p.Status).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return model.ErrIllegalTransition
			}
		}
		if students != nil {
			return tx.Model(&model.Project{ID: p.ID}).Association("Students").Replace(students)
		}
		return nil
	})
	switch {
	case errors.Is(err, model.ErrIllegalTransition):
		discardUpload(ctx, obj)
		return response.ErrInvalidTransition.WithOrigin(err).WithTips("项目状态已被修改，请刷新后重试")
	case err != nil:
		discardUpload(ctx, obj)
		log.Error("保存项目失败", "error", err, "project_id", p.ID)
		return response.ErrDatabase.WithOrigin(err)
	}

	if obj != nil && p.FileKey != "" {
		if err := storage.Default.Delete(ctx, p.FileKey); err != nil {
			log.Warn("删除旧附件失败", "key", p.FileKey, "error", err)
		}
	}
	if _, ok := updates["status"]; ok {
		cache.Forget(ctx, cache.PendingCountKey)
	}
	return nil
}
