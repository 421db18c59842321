package model

import (
	"path"
	"strconv"
	"time"

	"project-portal/config"
)

// 对外展示用的精简结构，不包含邮箱等账号信息

type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Username: u.Username, FullName: u.FullName()}
}

type SubjectBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Subject) Brief() *SubjectBrief {
	if s == nil {
		return nil
	}
	return &SubjectBrief{ID: s.ID, Name: s.Name, Code: s.Code}
}

type TeacherBrief struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (t *Teacher) Brief() *TeacherBrief {
	if t == nil {
		return nil
	}
	return &TeacherBrief{ID: t.ID, Name: t.DisplayName(), Department: t.Department, Position: t.Position}
}

type StudentBrief struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	GroupName string `json:"group_name"`
}

func (s *Student) Brief() StudentBrief {
	return StudentBrief{ID: s.ID, Username: s.User.Username, Name: s.User.FullName(), GroupName: s.GroupName}
}

// ProjectCard 列表和详情共用的项目视图，需预加载 Subject、Teacher.User、Students.User
type ProjectCard struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Year        int            `json:"year"`
	Keywords    []string       `json:"keywords"`
	Subject     *SubjectBrief  `json:"subject"`
	Teacher     *TeacherBrief  `json:"teacher"`
	Authors     []StudentBrief `json:"authors"`
	Status      Status         `json:"status"`
	Views       uint           `json:"views"`
	Downloads   uint           `json:"downloads"`
	FileName    string         `json:"file_name,omitempty"`
	URL         string         `json:"url"`
	CreatedAt   time.Time      `json:"created_at"`
	PublishedAt *time.Time     `json:"published_at"`
}

func (p *Project) Card() ProjectCard {
	card := ProjectCard{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Year:        p.Year,
		Keywords:    p.KeywordList(),
		Subject:     p.Subject.Brief(),
		Teacher:     p.Teacher.Brief(),
		Authors:     make([]StudentBrief, 0, len(p.Students)),
		Status:      p.Status,
		Views:       p.Views,
		Downloads:   p.Downloads,
		URL:         p.URL(),
		CreatedAt:   p.CreatedAt,
		PublishedAt: p.PublishedAt,
	}
	if p.HasFile() {
		card.FileName = p.FileName
	}
	for i := range p.Students {
		card.Authors = append(card.Authors, p.Students[i].Brief())
	}
	return card
}

func Cards(projects []Project) []ProjectCard {
	cards := make([]ProjectCard, 0, len(projects))
	for i := range projects {
		cards = append(cards, projects[i].Card())
	}
	return cards
}

// URL 详情接口地址，带上配置的路由前缀
func (p *Project) URL() string {
	prefix := ""
	if cfg := config.Get(); cfg != nil {
		prefix = cfg.Prefix
	}
	return "/" + path.Join(prefix, "project", strconv.FormatUint(uint64(p.ID), 10))
}

// CommentView 评论展示
type CommentView struct {
	ID        uint      `json:"id"`
	Author    UserBrief `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) View() CommentView {
	return CommentView{ID: c.ID, Author: c.User.Brief(), Text: c.Text, CreatedAt: c.CreatedAt}
}
