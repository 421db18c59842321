package model

import (
	"strings"
	"time"
)

// Project 学生提交的课程项目，是评论和作者关系的聚合根
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(300);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	SubjectID   *uint     `gorm:"index:idx_project_year_subject,priority:2" json:"subject_id"`
	Subject     *Subject  `gorm:"constraint:OnDelete:SET NULL" json:"subject,omitempty"`
	TeacherID   *uint     `gorm:"index" json:"teacher_id"`
	Teacher     *Teacher  `gorm:"constraint:OnDelete:SET NULL" json:"teacher,omitempty"`
	Students    []Student `gorm:"many2many:project_student;constraint:OnDelete:CASCADE" json:"students,omitempty"`
	Year        int       `gorm:"not null;index:idx_project_year_subject,priority:1" json:"year"`
	Keywords    string    `gorm:"type:varchar(500)" json:"keywords"` // 逗号分隔
	FileKey     string    `gorm:"type:varchar(255)" json:"-"`        // 存储中的对象 key
	FileName    string    `gorm:"type:varchar(255)" json:"file_name"`
	Status      Status    `gorm:"type:varchar(20);not null;default:draft;index:idx_project_status_created,priority:1" json:"status"`
	Views       uint      `gorm:"not null;default:0" json:"views"`
	Downloads   uint      `gorm:"not null;default:0" json:"downloads"`

	ModeratedByID     *uint      `gorm:"index" json:"moderated_by_id"`
	ModeratedBy       *Teacher   `gorm:"foreignKey:ModeratedByID;constraint:OnDelete:SET NULL" json:"moderated_by,omitempty"`
	ModerationComment string     `gorm:"type:text" json:"moderation_comment"`
	ModeratedAt       *time.Time `json:"moderated_at"`
	PublishedAt       *time.Time `json:"published_at"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"index:idx_project_status_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeywordList 拆分关键词，去掉空白项
func (p *Project) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(p.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (p *Project) HasFile() bool {
	return p.FileKey != ""
}
