package project

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"project-portal/internal/global/response"
	"project-portal/internal/global/storage"
	"project-portal/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// createForm 提交项目，multipart/form-data
type createForm struct {
	Title       string                `form:"title" binding:"required,max=300"`
	Description string                `form:"description" binding:"required"`
	SubjectID   uint                  `form:"subject_id"`
	TeacherID   uint                  `form:"teacher_id"`
	Year        int                   `form:"year" binding:"required,min=2000,max=2100"`
	Keywords    string                `form:"keywords" binding:"max=500,keywords"`
	StudentIDs  []uint                `form:"student_ids"` // 其他共同作者，提交者自动加入
	File        *multipart.FileHeader `form:"file"`
}

// editForm 修改项目，只更新出现的字段；subject_id/teacher_id 传 0 表示清空
type editForm struct {
	Title       *string               `form:"title" binding:"omitempty,min=1,max=300"`
	Description *string               `form:"description" binding:"omitempty,min=1"`
	SubjectID   *uint                 `form:"subject_id"`
	TeacherID   *uint                 `form:"teacher_id"`
	Year        *int                  `form:"year" binding:"omitempty,min=2000,max=2100"`
	Keywords    *string               `form:"keywords" binding:"omitempty,max=500,keywords"`
	StudentIDs  []uint                `form:"student_ids"`
	Status      *model.Status         `form:"status"` // 仅管理员
	File        *multipart.FileHeader `form:"file"`
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// checkRefs 学科和教师不存在时返回 ErrInvalidRequest
func checkRefs(db *gorm.DB, subjectID, teacherID *uint) error {
	if subjectID != nil {
		var n int64
		if err := db.Model(&model.Subject{}).Where("id = ?", *subjectID).Count(&n).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		if n == 0 {
			return response.ErrInvalidRequest.WithTips("学科不存在")
		}
	}
	if teacherID != nil {
		var n int64
		if err := db.Model(&model.Teacher{}).Where("id = ?", *teacherID).Count(&n).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		if n == 0 {
			return response.ErrInvalidRequest.WithTips("指导教师不存在")
		}
	}
	return nil
}

// loadStudents 按 id 查询共同作者，must 为必须包含的学生（通常是提交者）
func loadStudents(db *gorm.DB, ids []uint, must *model.Student) ([]model.Student, error) {
	seen := make(map[uint]bool, len(ids)+1)
	var unique []uint
	if must != nil {
		seen[must.ID] = true
		unique = append(unique, must.ID)
	}
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, response.ErrInvalidRequest.WithTips("项目至少需要一位作者")
	}

	var students []model.Student
	if err := db.Where("id IN ?", unique).Find(&students).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if len(students) != len(unique) {
		return nil, response.ErrInvalidRequest.WithTips("共同作者不存在")
	}
	return students, nil
}

// saveUpload 校验并保存附件，调用方负责在事务失败时删除
func saveUpload(ctx context.Context, fh *multipart.FileHeader) (*storage.Object, error) {
	switch err := storage.Validate(fh, storage.MaxBytes()); {
	case errors.Is(err, storage.ErrExtension):
		return nil, response.ErrFileType.WithTips("仅支持 " + strings.Join(storage.AllowedExtensions, ", "))
	case errors.Is(err, storage.ErrTooLarge):
		return nil, response.ErrFileTooLarge.WithTips(fmt.Sprintf("文件不能超过 %d MB", storage.MaxBytes()>>20))
	}
	obj, err := storage.Default.Save(ctx, fh)
	if err != nil {
		return nil, response.ErrStorage.WithOrigin(err)
	}
	return obj, nil
}

// discardUpload 事务失败后清理已保存的文件
func discardUpload(ctx context.Context, obj *storage.Object) {
	if obj == nil {
		return
	}
	if err := storage.Default.Delete(ctx, obj.Key); err != nil {
		log.Error("清理上传文件失败", "key", obj.Key, "error", err)
	}
}

// changes 把表单中出现的字段转换为更新列，students 为 nil 表示不修改作者；
// author 不为空时作者列表中始终保留该学生
func (f *editForm) changes(db *gorm.DB, author *model.Student) (map[string]any, []model.Student, error) {
	updates := map[string]any{}
	if f.Title != nil {
		updates["title"] = strings.TrimSpace(*f.Title)
	}
	if f.Description != nil {
		updates["description"] = *f.Description
	}
	if f.Year != nil {
		updates["year"] = *f.Year
	}
	if f.Keywords != nil {
		updates["keywords"] = *f.Keywords
	}

	var subjectID, teacherID *uint
	if f.SubjectID != nil {
		subjectID = optionalID(*f.SubjectID)
		updates["subject_id"] = subjectID
	}
	if f.TeacherID != nil {
		teacherID = optionalID(*f.TeacherID)
		updates["teacher_id"] = teacherID
	}
	if err := checkRefs(db, subjectID, teacherID); err != nil {
		return nil, nil, err
	}

	var students []model.Student
	if len(f.StudentIDs) > 0 {
		var err error
		if students, err = loadStudents(db, f.StudentIDs, author); err != nil {
			return nil, nil, err
		}
	}
	return updates, students, nil
}
