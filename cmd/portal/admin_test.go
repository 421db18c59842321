package main

import (
	"bytes"
	"errors"
	"testing"

	"project-portal/internal/global/response"
	"project-portal/internal/model"
	"project-portal/test"
	"project-portal/tools"

	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	db := test.Setup(t)
	out := &bytes.Buffer{}

	require.NoError(t, seed(db, out))
	require.Contains(t, out.String(), "4 个学科")

	var n int64
	require.NoError(t, db.Model(&model.Project{}).Where("status = ?", model.StatusPublished).Count(&n).Error)
	require.EqualValues(t, 1, n)
	require.NoError(t, db.Table("project_student").Count(&n).Error)
	require.EqualValues(t, 2, n)

	var admin model.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	require.True(t, admin.IsStaff)
	require.True(t, tools.PasswordCompare("admin12345", admin.Password))

	// 再次执行不重复写入
	out.Reset()
	require.NoError(t, seed(db, out))
	require.Contains(t, out.String(), "跳过")
	require.NoError(t, db.Model(&model.User{}).Count(&n).Error)
	require.EqualValues(t, 3, n)
}

func TestAddTeacher(t *testing.T) {
	db := test.Setup(t)
	test.CreateUser(t, db, "wang")

	teacher, err := addTeacher(db, "wang@example.com", model.Teacher{Department: "数学系"})
	require.NoError(t, err)
	require.Equal(t, "数学系", teacher.Department)
	require.Equal(t, "wang", teacher.User.Username)

	_, err = addTeacher(db, "wang", model.Teacher{})
	require.ErrorIs(t, err, response.ErrAlreadyExists)

	_, err = addTeacher(db, "nobody", model.Teacher{})
	require.ErrorIs(t, err, errUserNotFound)
}

func TestSetStaff(t *testing.T) {
	db := test.Setup(t)
	u := test.CreateUser(t, db, "alice")

	require.NoError(t, setStaff(db, "alice", true))
	require.NoError(t, db.First(u, u.ID).Error)
	require.True(t, u.IsStaff)

	require.NoError(t, setStaff(db, "alice", false))
	require.NoError(t, db.First(u, u.ID).Error)
	require.False(t, u.IsStaff)

	require.ErrorIs(t, setStaff(db, "bob", true), errUserNotFound)
}

func TestResetPassword(t *testing.T) {
	db := test.Setup(t)
	u := test.CreateUser(t, db, "alice")

	require.Error(t, resetPassword(db, "alice", "short"))
	require.ErrorIs(t, resetPassword(db, "bob", "newpass123"), errUserNotFound)

	require.NoError(t, resetPassword(db, "alice", "newpass123"))
	require.NoError(t, db.First(u, u.ID).Error)
	require.True(t, tools.PasswordCompare("newpass123", u.Password))
}

func TestPromptPassword(t *testing.T) {
	orig := readPasswordFunc
	defer func() { readPasswordFunc = orig }()

	inputs := [][]byte{[]byte("newpass123"), []byte("newpass123")}
	readPasswordFunc = func(int) ([]byte, error) {
		next := inputs[0]
		inputs = inputs[1:]
		return next, nil
	}
	out := &bytes.Buffer{}
	pwd, err := promptPassword(out)
	require.NoError(t, err)
	require.Equal(t, "newpass123", pwd)
	require.Contains(t, out.String(), "再次输入")

	inputs = [][]byte{[]byte("newpass123"), []byte("other1234")}
	_, err = promptPassword(out)
	require.Error(t, err)

	readPasswordFunc = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = promptPassword(out)
	require.EqualError(t, err, "not a terminal")
}
