package model

import (
	"time"

	"gorm.io/gorm"
)

// Comment 项目评论，创建后不可修改
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index;not null" json:"project_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// CommentsOf 项目评论，最新的在前，作者信息一并加载
func CommentsOf(db *gorm.DB, projectID uint) ([]CommentView, error) {
	var comments []Comment
	err := db.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].View())
	}
	return views, nil
}
