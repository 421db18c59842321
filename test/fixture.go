package test

import (
	"testing"

	"project-portal/internal/global/jwt"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Password 所有测试账号的密码
const Password = "secret123"

var passwordHash string

func hash() string {
	if passwordHash == "" {
		passwordHash = tools.PasswordEncrypt(Password)
	}
	return passwordHash
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		Password:  hash(),
		IsActive:  true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateStaff(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := CreateUser(t, db, username)
	require.NoError(t, db.Model(u).Update("is_staff", true).Error)
	u.IsStaff = true
	return u
}

func CreateStudent(t *testing.T, db *gorm.DB, username string) (*model.User, *model.Student) {
	t.Helper()
	u := CreateUser(t, db, username)
	s := &model.Student{UserID: u.ID, GroupName: "G-1"}
	require.NoError(t, db.Omit("User").Create(s).Error)
	s.User = *u
	return u, s
}

func CreateTeacher(t *testing.T, db *gorm.DB, username string) (*model.User, *model.Teacher) {
	t.Helper()
	u := CreateUser(t, db, username)
	teacher := &model.Teacher{UserID: u.ID, Department: "CS"}
	require.NoError(t, db.Omit("User").Create(teacher).Error)
	teacher.User = *u
	return u, teacher
}

func CreateSubject(t *testing.T, db *gorm.DB, name string) *model.Subject {
	t.Helper()
	s := &model.Subject{Name: name}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateProject 按给定字段创建项目，Year 为空时取 2024
func CreateProject(t *testing.T, db *gorm.DB, p model.Project, authors ...*model.Student) *model.Project {
	t.Helper()
	if p.Year == 0 {
		p.Year = 2024
	}
	if p.Description == "" {
		p.Description = p.Title
	}
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	for _, a := range authors {
		p.Students = append(p.Students, *a)
	}
	require.NoError(t, db.Omit("Students.*").Create(&p).Error)
	return &p
}

// Token 为账号签发 token
func Token(u *model.User) string {
	return jwt.CreateToken(jwt.Payload{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff})
}
