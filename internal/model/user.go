package model

import "strings"

type User struct {
	Model
	Username  string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email     string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"type:varchar(30)" json:"first_name"`
	LastName  string `gorm:"type:varchar(30)" json:"last_name"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff   bool   `gorm:"not null;default:false" json:"is_staff"`
	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`
}

// FullName 姓名为空时退回用户名
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
