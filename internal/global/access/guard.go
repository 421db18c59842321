// Package access 按动作做的权限判断：管理员、教师身份、学生身份、项目共同作者
package access

import (
	"project-portal/internal/global/database"
	"project-portal/internal/global/jwt"
	"project-portal/internal/global/response"
	"project-portal/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const identityKey = "identity"

// Identity 当前账号及其关联的教师/学生记录
type Identity struct {
	User    model.User
	Teacher *model.Teacher
	Student *model.Student
}

func (i *Identity) IsStaff() bool {
	return i != nil && i.User.IsStaff
}

func (i *Identity) IsTeacher() bool {
	return i != nil && i.Teacher != nil
}

func (i *Identity) IsStudent() bool {
	return i != nil && i.Student != nil
}

// CanModerate 教师或管理员
func (i *Identity) CanModerate() bool {
	return i.IsTeacher() || i.IsStaff()
}

// ModeratorID 审核人记录为教师，管理员没有教师身份时为空
func (i *Identity) ModeratorID() *uint {
	if !i.IsTeacher() {
		return nil
	}
	id := i.Teacher.ID
	return &id
}

// Resolve 查询账号及关联身份
func Resolve(db *gorm.DB, userID uint) (*Identity, error) {
	id := &Identity{}
	if err := db.First(&id.User, userID).Error; err != nil {
		return nil, err
	}
	var err error
	if id.Teacher, err = TeacherOf(db, userID); err != nil {
		return nil, err
	}
	if id.Student, err = StudentOf(db, userID); err != nil {
		return nil, err
	}
	return id, nil
}

// TeacherOf 账号没有教师身份时返回 nil, nil
func TeacherOf(db *gorm.DB, userID uint) (*model.Teacher, error) {
	var teachers []model.Teacher
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&teachers).Error; err != nil {
		return nil, err
	}
	if len(teachers) == 0 {
		return nil, nil
	}
	return &teachers[0], nil
}

// StudentOf 账号没有学生身份时返回 nil, nil
func StudentOf(db *gorm.DB, userID uint) (*model.Student, error) {
	var students []model.Student
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&students).Error; err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}
	return &students[0], nil
}

// IsCoAuthor 账号是否为项目的共同作者
func IsCoAuthor(db *gorm.DB, projectID, userID uint) (bool, error) {
	var n int64
	err := db.Table("project_student").
		Joins("JOIN student ON student.id = project_student.student_id").
		Where("project_student.project_id = ? AND student.user_id = ?", projectID, userID).
		Count(&n).Error
	return n > 0, err
}

// CanEdit 共同作者或管理员可以编辑项目
func (i *Identity) CanEdit(db *gorm.DB, projectID uint) (bool, error) {
	if i.IsStaff() {
		return true, nil
	}
	return IsCoAuthor(db, projectID, i.User.ID)
}

// CanView 已发布项目所有人可见，其它状态仅作者、教师和管理员可见
func CanView(db *gorm.DB, i *Identity, p *model.Project) (bool, error) {
	if p.Status == model.StatusPublished {
		return true, nil
	}
	if i == nil {
		return false, nil
	}
	if i.CanModerate() {
		return true, nil
	}
	return IsCoAuthor(db, p.ID, i.User.ID)
}

// Current 解析当前请求的身份并缓存在 gin.Context 中，未登录返回 ErrUnauthorized
func Current(c *gin.Context) (*Identity, error) {
	if v, ok := c.Get(identityKey); ok {
		return v.(*Identity), nil
	}
	claims, ok := jwt.GetUserPayload(c)
	if !ok {
		return nil, response.ErrUnauthorized
	}
	id, err := Resolve(database.DB.WithContext(c.Request.Context()), claims.UserID)
	switch {
	case database.IsNotFound(err):
		return nil, response.ErrTokenInvalid
	case err != nil:
		return nil, response.ErrDatabase.WithOrigin(err)
	case !id.User.IsActive:
		return nil, response.ErrForbidden.WithTips("账号已停用")
	}
	c.Set(identityKey, id)
	return id, nil
}

// Optional 未登录时返回 nil, nil
func Optional(c *gin.Context) (*Identity, error) {
	if _, ok := jwt.GetUserPayload(c); !ok {
		return nil, nil
	}
	return Current(c)
}
