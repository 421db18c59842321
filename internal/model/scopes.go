package model

import "gorm.io/gorm"

// WithCard 预加载 ProjectCard 需要的关联
func WithCard(db *gorm.DB) *gorm.DB {
	return db.Preload("Subject").Preload("Teacher.User").Preload("Students.User")
}

func Published(db *gorm.DB) *gorm.DB {
	return db.Where("project.status = ?", StatusPublished)
}

// Newest 按提交时间倒序，id 保证同一时间的顺序稳定
func Newest(db *gorm.DB) *gorm.DB {
	return db.Order("project.created_at DESC").Order("project.id DESC")
}

// AuthoredBy 学生参与的项目
func AuthoredBy(studentID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("project_student").
				Select("project_id").
				Where("student_id = ?", studentID))
	}
}

// PublishedCounts 按 column（subject_id 或 teacher_id）统计已发布项目数量
func PublishedCounts(db *gorm.DB, column string) (map[uint]int64, error) {
	var rows []struct {
		RefID uint
		N     int64
	}
	err := db.Model(&Project{}).
		Scopes(Published).
		Select("project." + column + " AS ref_id, COUNT(*) AS n").
		Where("project." + column + " IS NOT NULL").
		Group("project." + column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.RefID] = r.N
	}
	return counts, nil
}
