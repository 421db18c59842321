package user

import (
	"strings"

	"project-portal/internal/global/access"
	"project-portal/internal/global/database"
	"project-portal/internal/global/jwt"
	"project-portal/internal/global/response"
	"project-portal/internal/global/session"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterReq 注册即成为学生
type RegisterReq struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email,max=254"`
	FirstName       string `json:"first_name" binding:"required,max=30"`
	LastName        string `json:"last_name" binding:"required,max=30"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
	StudentNumber   string `json:"student_number" binding:"max=50"`
	GroupName       string `json:"group_name" binding:"max=50"`
	EnrollmentYear  int    `json:"enrollment_year" binding:"omitempty,min=2000,max=2100"`
}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordReq 修改密码
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type studentInfo struct {
	ID             uint   `json:"id"`
	StudentNumber  string `json:"student_number"`
	GroupName      string `json:"group_name"`
	EnrollmentYear int    `json:"enrollment_year"`
}

type teacherInfo struct {
	ID         uint   `json:"id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Bio        string `json:"bio"`
}

// account 当前账号的完整信息，只返回给本人
type account struct {
	ID        uint         `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	IsStaff   bool         `json:"is_staff"`
	Student   *studentInfo `json:"student,omitempty"`
	Teacher   *teacherInfo `json:"teacher,omitempty"`
}

func newAccount(i *access.Identity) account {
	a := account{
		ID:        i.User.ID,
		Username:  i.User.Username,
		Email:     i.User.Email,
		FirstName: i.User.FirstName,
		LastName:  i.User.LastName,
		IsStaff:   i.User.IsStaff,
	}
	if s := i.Student; s != nil {
		a.Student = &studentInfo{ID: s.ID, StudentNumber: s.StudentNumber, GroupName: s.GroupName, EnrollmentYear: s.EnrollmentYear}
	}
	if t := i.Teacher; t != nil {
		a.Teacher = &teacherInfo{ID: t.ID, Department: t.Department, Position: t.Position, Bio: t.Bio}
	}
	return a
}

func payloadOf(u *model.User) jwt.Payload {
	return jwt.Payload{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

// Register 创建账号和学生档案，并直接登录
func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定注册请求失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	// required 只校验非空串，全是空格的值要在去空白后再拦一次
	if req.Username == "" || req.FirstName == "" || req.LastName == "" {
		response.Fail(c, response.ErrInvalidRequest.WithTips("用户名和姓名不能为空白"))
		return
	}

	if err := tools.PasswordStrength(req.Password); err != nil {
		log.Warn("密码强度验证失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrPasswordWeak.WithOrigin(err).WithTips(err.Error()))
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	for _, check := range []struct {
		column, value, tip string
	}{
		{"username", req.Username, "用户名已被使用"},
		{"email", req.Email, "邮箱已被使用"},
	} {
		var n int64
		if err := db.Model(&model.User{}).Where(check.column+" = ?", check.value).Count(&n).Error; err != nil {
			log.Error("数据库查询失败", "error", err, "username", req.Username)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		if n > 0 {
			response.Fail(c, response.ErrAlreadyExists.WithTips(check.tip))
			return
		}
	}

	user := model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  tools.PasswordEncrypt(req.Password),
		IsActive:  true,
	}
	student := model.Student{
		StudentNumber:  req.StudentNumber,
		GroupName:      req.GroupName,
		EnrollmentYear: req.EnrollmentYear,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		student.UserID = user.ID
		return tx.Omit("User").Create(&student).Error
	})
	switch {
	case database.IsDuplicate(err):
		// 并发注册同名账号
		response.Fail(c, response.ErrAlreadyExists.WithOrigin(err).WithTips("用户名或邮箱已被使用"))
		return
	case err != nil:
		log.Error("创建用户失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("用户注册成功", "user_id", user.ID, "username", user.Username)

	token := session.Login(c, payloadOf(&user))
	response.Success(c, gin.H{
		"token":   token,
		"account": newAccount(&access.Identity{User: user, Student: &student}),
	})
}

// Login 用户名密码登录，token 同时写入 cookie
func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var user model.User
	err := database.DB.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error
	switch {
	case database.IsNotFound(err):
		log.Warn("用户不存在", "username", req.Username)
		response.Fail(c, response.ErrInvalidPassword)
		return
	case err != nil:
		log.Error("数据库查询失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if !tools.PasswordCompare(req.Password, user.Password) {
		log.Warn("密码错误", "username", req.Username)
		response.Fail(c, response.ErrInvalidPassword)
		return
	}
	if !user.IsActive {
		response.Fail(c, response.ErrForbidden.WithTips("账号已停用"))
		return
	}

	log.Info("用户登录成功", "user_id", user.ID, "username", user.Username)

	token := session.Login(c, payloadOf(&user))
	response.Success(c, gin.H{
		"token":    token,
		"user":     user.Brief(),
		"is_staff": user.IsStaff,
	})
}

// Logout 注销当前 token
func Logout(c *gin.Context) {
	claims, _ := jwt.GetUserPayload(c)
	if err := session.Logout(c, claims); err != nil {
		log.Error("注销 token 失败", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	response.Success(c)
}

// Profile 个人信息和参与的项目
func Profile(c *gin.Context) {
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	projects := []model.Project{}
	if ident.IsStudent() {
		err := database.DB.WithContext(c.Request.Context()).
			Scopes(model.AuthoredBy(ident.Student.ID), model.WithCard, model.Newest).
			Find(&projects).Error
		if err != nil {
			log.Error("查询用户项目失败", "error", err, "user_id", ident.User.ID)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
	}

	response.Success(c, gin.H{
		"account":  newAccount(ident),
		"projects": model.Cards(projects),
	})
}

// ChangePassword 修改密码，已签发的其他 token 在过期前仍然有效
func ChangePassword(c *gin.Context) {
	ident, err := access.Current(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if !tools.PasswordCompare(req.OldPassword, ident.User.Password) {
		log.Warn("旧密码错误", "user_id", ident.User.ID)
		response.Fail(c, response.ErrInvalidPassword.WithTips("旧密码错误"))
		return
	}
	if err := tools.PasswordStrength(req.NewPassword); err != nil {
		response.Fail(c, response.ErrPasswordWeak.WithOrigin(err).WithTips(err.Error()))
		return
	}

	err = database.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("id = ?", ident.User.ID).
		Update("password", tools.PasswordEncrypt(req.NewPassword)).Error
	if err != nil {
		log.Error("修改密码失败", "error", err, "user_id", ident.User.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("密码修改成功", "user_id", ident.User.ID)
	response.Success(c)
}
