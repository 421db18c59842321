package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"project-portal/internal/global/database"
	"project-portal/internal/model"
	"project-portal/internal/module/teacher"
	"project-portal/tools"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	readPasswordFunc = term.ReadPassword // 测试中替换

	errUserNotFound = errors.New("账号不存在")
)

func findUser(db *gorm.DB, username string) (*model.User, error) {
	var user model.User
	err := db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", errUserNotFound, username)
	}
	return &user, err
}

func teacherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "管理教师档案",
	}

	var department, position, bio string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "为已有账号添加教师身份",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			connect()
			t, err := addTeacher(database.DB, args[0], model.Teacher{
				Department: department,
				Position:   position,
				Bio:        bio,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "教师已添加: id=%d %s\n", t.ID, t.DisplayName())
			return nil
		},
	}
	add.Flags().StringVar(&department, "department", "", "所在院系")
	add.Flags().StringVar(&position, "position", "", "职称")
	add.Flags().StringVar(&bio, "bio", "", "简介")

	cmd.AddCommand(add)
	return cmd
}

func addTeacher(db *gorm.DB, username string, profile model.Teacher) (*model.Teacher, error) {
	user, err := findUser(db, username)
	if err != nil {
		return nil, err
	}
	return teacher.Link(db, user.ID, profile)
}

func grantStaffCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant-staff USERNAME",
		Short: "授予或撤销管理员权限",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			connect()
			if err := setStaff(database.DB, args[0], !revoke); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is_staff=%t\n", args[0], !revoke)
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "撤销管理员权限")
	return cmd
}

func setStaff(db *gorm.DB, username string, staff bool) error {
	user, err := findUser(db, username)
	if err != nil {
		return err
	}
	return db.Model(user).Update("is_staff", staff).Error
}

func resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password USERNAME|EMAIL",
		Short: "重置账号密码，新密码从终端读取",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			connect()
			if err := resetPassword(database.DB, args[0], pwd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "密码已重置")
			return nil
		},
	}
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "新密码: ")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "再次输入: ")
	again, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(pwd) != string(again) {
		return "", errors.New("两次输入的密码不一致")
	}
	return string(pwd), nil
}

func resetPassword(db *gorm.DB, username, password string) error {
	if err := tools.PasswordStrength(password); err != nil {
		return err
	}
	user, err := findUser(db, username)
	if err != nil {
		return err
	}
	return db.Model(user).Update("password", tools.PasswordEncrypt(password)).Error
}
