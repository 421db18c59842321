package moderation

import (
	"context"
	"time"

	"project-portal/internal/global/access"
	"project-portal/internal/global/cache"
	"project-portal/internal/global/database"
	"project-portal/internal/global/notify"
	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const pendingCountTTL = time.Minute

// statsStatuses 队列页顶部展示的状态
var statsStatuses = []model.Status{
	model.StatusPending,
	model.StatusRevision,
	model.StatusPublished,
	model.StatusRejected,
}

type ModerateReq struct {
	Action  model.Action `json:"action" binding:"required,oneof=approve reject revision"`
	Comment string       `json:"comment" binding:"max=2000"`
}

type BulkApproveReq struct {
	IDs []uint `json:"ids" binding:"required,min=1,max=100"`
}

// queueStatus 读取 status 参数，默认待审核
func queueStatus(c *gin.Context) (model.Status, error) {
	status := model.Status(c.DefaultQuery("status", string(model.StatusPending)))
	if !status.Valid() {
		return "", response.ErrInvalidRequest.WithTips("无效的状态")
	}
	return status, nil
}

// Queue 按状态列出项目，附各状态数量
func Queue(c *gin.Context) {
	status, err := queueStatus(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	var projects []model.Project
	if err := db.Scopes(model.WithCard, model.Newest).
		Where("project.status = ?", status).
		Find(&projects).Error; err != nil {
		log.Error("查询审核队列失败", "error", err, "status", status)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	stats, err := countByStatus(db)
	if err != nil {
		log.Error("统计项目状态失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"status":   status,
		"projects": model.Cards(projects),
		"stats":    stats,
	})
}

func countByStatus(db *gorm.DB) (map[model.Status]int64, error) {
	var rows []struct {
		Status model.Status
		N      int64
	}
	if err := db.Model(&model.Project{}).
		Select("status, COUNT(*) AS n").
		Where("status IN ?", statsStatuses).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := make(map[model.Status]int64, len(statsStatuses))
	for _, s := range statsStatuses {
		stats[s] = 0
	}
	for _, r := range rows {
		stats[r.Status] = r.N
	}
	return stats, nil
}

// PendingCount 待审核数量，导航栏角标使用，有 Redis 时缓存
func PendingCount(c *gin.Context) {
	ctx := c.Request.Context()
	n, err := cache.Remember(ctx, cache.PendingCountKey, pendingCountTTL, func() (int64, error) {
		var n int64
		err := database.DB.WithContext(ctx).Model(&model.Project{}).
			Where("status = ?", model.StatusPending).
			Count(&n).Error
		return n, err
	})
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, gin.H{"count": n})
}

// Moderate 对单个待审核项目执行通过、拒绝或退回修改
func Moderate(c *gin.Context) {
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	id, err := tools.ParamID(c, "id")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	var req ModerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	ctx := c.Request.Context()
	project, err := apply(ctx, id, ident, req.Action, req.Comment)
	if err != nil {
		response.Fail(c, err)
		return
	}
	cache.Forget(ctx, cache.PendingCountKey)
	notify.Moderation(ctx, notify.NewDecision(project, req.Action))

	response.Success(c, project.Card())
}

// BulkApprove 批量通过，不处于待审核状态的项目跳过
func BulkApprove(c *gin.Context) {
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req BulkApproveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	ctx := c.Request.Context()
	approved, skipped := []uint{}, []uint{}
	seen := make(map[uint]bool, len(req.IDs))
	for _, id := range req.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		project, err := apply(ctx, id, ident, model.ActionApprove, "")
		var e *response.Error
		switch {
		case err == nil:
			approved = append(approved, id)
			notify.Moderation(ctx, notify.NewDecision(project, model.ActionApprove))
		case errors.As(err, &e) && (e.Is(response.ErrNotFound) || e.Is(response.ErrInvalidTransition)):
			skipped = append(skipped, id)
		default:
			response.Fail(c, err)
			return
		}
	}
	if len(approved) > 0 {
		cache.Forget(ctx, cache.PendingCountKey)
	}

	log.Info("批量审核通过", "user_id", ident.User.ID, "approved", len(approved), "skipped", len(skipped))
	response.Success(c, gin.H{"approved": approved, "skipped": skipped})
}

// apply 在事务里执行审核动作，以原状态为条件更新，返回预加载好的项目
func apply(ctx context.Context, id uint, ident *access.Identity, action model.Action, comment string) (*model.Project, error) {
	var project model.Project
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, id).Error; err != nil {
			return err
		}
		from := project.Status
		if err := project.Moderate(action, ident.ModeratorID(), comment, time.Now()); err != nil {
			return err
		}

		res := tx.Model(&model.Project{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]any{
				"status":             project.Status,
				"moderated_by_id":    project.ModeratedByID,
				"moderation_comment": project.ModerationComment,
				"moderated_at":       project.ModeratedAt,
				"published_at":       project.PublishedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrIllegalTransition
		}
		return tx.Scopes(model.WithCard).First(&project, id).Error
	})
	switch {
	case database.IsNotFound(err):
		return nil, response.ErrNotFound.WithTips("项目不存在")
	case errors.Is(err, model.ErrIllegalTransition):
		return nil, response.ErrInvalidTransition.WithOrigin(err).WithTips("只能审核待审核状态的项目")
	case err != nil:
		log.Error("审核项目失败", "error", err, "project_id", id)
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	log.Info("项目审核完成",
		"project_id", id,
		"action", action,
		"status", project.Status,
		"user_id", ident.User.ID)
	return &project, nil
}
