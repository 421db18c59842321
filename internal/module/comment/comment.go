package comment

import (
	"strings"

	"project-portal/internal/global/access"
	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
)

// AddReq 评论内容，发布后不能修改或删除
type AddReq struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// visibleProject 读取当前用户能看到的项目，看不到时按不存在处理
func visibleProject(c *gin.Context, ident *access.Identity) (*model.Project, error) {
	id, err := tools.ParamID(c, "id")
	if err != nil {
		return nil, response.ErrInvalidRequest.WithOrigin(err)
	}
	db := database.DB.WithContext(c.Request.Context())

	var project model.Project
	err = db.Select("id", "status").First(&project, id).Error
	switch {
	case database.IsNotFound(err):
		return nil, response.ErrNotFound.WithTips("项目不存在")
	case err != nil:
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	ok, err := access.CanView(db, ident, &project)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if !ok {
		return nil, response.ErrNotFound.WithTips("项目不存在")
	}
	return &project, nil
}

// List 项目评论，最新的在前
func List(c *gin.Context) {
	ident, err := access.Optional(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	project, err := visibleProject(c, ident)
	if err != nil {
		response.Fail(c, err)
		return
	}

	comments, err := model.CommentsOf(database.DB.WithContext(c.Request.Context()), project.ID)
	if err != nil {
		log.Error("查询评论失败", "error", err, "project_id", project.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, gin.H{"comments": comments})
}

// Add 登录用户对可见项目发表评论
func Add(c *gin.Context) {
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	project, err := visibleProject(c, ident)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req AddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err).WithTips("评论不能为空且不超过2000字"))
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		response.Fail(c, response.ErrInvalidRequest.WithTips("评论不能为空"))
		return
	}

	comment := model.Comment{
		ProjectID: project.ID,
		UserID:    ident.User.ID,
		User:      ident.User,
		Text:      text,
	}
	if err := database.DB.WithContext(c.Request.Context()).Omit("User").Create(&comment).Error; err != nil {
		log.Error("发表评论失败", "error", err, "project_id", project.ID, "user_id", ident.User.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("发表评论", "project_id", project.ID, "user_id", ident.User.ID, "comment_id", comment.ID)
	response.Success(c, comment.View())
}
