package model

// Teacher 指导教师，与账号一一对应
type Teacher struct {
	Model
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User       User   `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Department string `gorm:"type:varchar(200)" json:"department"`
	Position   string `gorm:"type:varchar(200)" json:"position"`
	Bio        string `gorm:"type:text" json:"bio"`
}

func (t *Teacher) DisplayName() string {
	return t.User.FullName()
}
