package main

import (
	"fmt"
	"io"
	"time"

	"project-portal/internal/global/database"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "写入演示数据（已有学科时跳过）",
		RunE: func(cmd *cobra.Command, args []string) error {
			connect()
			return seed(database.DB, cmd.OutOrStdout())
		},
	}
}

func seed(db *gorm.DB, out io.Writer) error {
	var n int64
	if err := db.Model(&model.Subject{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintln(out, "已存在数据，跳过")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		subjects := []model.Subject{
			{Name: "算法与数据结构", Code: "ALG"},
			{Name: "数据库", Code: "DB"},
			{Name: "Web 程序设计", Code: "WEB"},
			{Name: "机器学习", Code: "ML"},
		}
		if err := tx.Create(&subjects).Error; err != nil {
			return err
		}

		admin := model.User{Username: "admin", Email: "admin@example.com", Password: tools.PasswordEncrypt("admin12345"), IsStaff: true, IsActive: true}
		teacherUser := model.User{Username: "teacher1", Email: "teacher@example.com", FirstName: "伟", LastName: "王", Password: tools.PasswordEncrypt("teacher123"), IsActive: true}
		studentUser := model.User{Username: "student1", Email: "student@example.com", FirstName: "娜", LastName: "李", Password: tools.PasswordEncrypt("student123"), IsActive: true}
		for _, u := range []*model.User{&admin, &teacherUser, &studentUser} {
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}

		teacher := model.Teacher{UserID: teacherUser.ID, Department: "信息技术系", Position: "副教授"}
		if err := tx.Omit("User").Create(&teacher).Error; err != nil {
			return err
		}
		student := model.Student{UserID: studentUser.ID, StudentNumber: "2024-001", GroupName: "计科 21-1", EnrollmentYear: 2024}
		if err := tx.Omit("User").Create(&student).Error; err != nil {
			return err
		}

		now := time.Now()
		projects := []model.Project{
			{
				Title:       "示例项目：图书检索系统",
				Description: "基于倒排索引的图书检索系统",
				SubjectID:   &subjects[0].ID,
				TeacherID:   &teacher.ID,
				Year:        2024,
				Keywords:    "检索, 倒排索引",
				Status:      model.StatusPublished,
				PublishedAt: &now,
				Students:    []model.Student{student},
			},
			{
				Title:       "示例项目：选课数据库设计",
				Description: "选课系统的关系模型与范式分析",
				SubjectID:   &subjects[1].ID,
				TeacherID:   &teacher.ID,
				Year:        2024,
				Keywords:    "数据库, 范式",
				Status:      model.StatusPending,
				Students:    []model.Student{student},
			},
		}
		if err := tx.Omit("Students.*").Create(&projects).Error; err != nil {
			return err
		}

		fmt.Fprintf(out, "已创建 %d 个学科、3 个账号（admin / teacher1 / student1）、%d 个项目\n", len(subjects), len(projects))
		return nil
	})
}
