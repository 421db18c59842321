package model

import (
	"time"
)

// Model 各表共用字段，没有软删除：项目只归档，学科/教师删除时置空引用
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All 需要自动迁移的模型，顺序即建表顺序
func All() []any {
	return []any{
		&User{},
		&Subject{},
		&Teacher{},
		&Student{},
		&Project{},
		&Comment{},
	}
}
