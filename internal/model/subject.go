package model

// Subject 学科，名称不强制唯一
type Subject struct {
	Model
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Code        string `gorm:"type:varchar(20)" json:"code"`
	Description string `gorm:"type:text" json:"description"`
}
