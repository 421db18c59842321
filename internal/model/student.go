package model

// Student 学生，与账号一一对应，通过 project_student 与项目多对多
type Student struct {
	Model
	UserID         uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User   `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	StudentNumber  string `gorm:"type:varchar(50)" json:"student_number"`
	GroupName      string `gorm:"type:varchar(50)" json:"group_name"`
	EnrollmentYear int    `json:"enrollment_year"`
}
