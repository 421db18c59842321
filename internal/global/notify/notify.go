// Package notify 把审核结果推送到外部 webhook
package notify

import (
	"context"
	"fmt"
	"time"

	"project-portal/config"
	"project-portal/internal/global/httpclient"
	"project-portal/internal/global/logger"
	"project-portal/internal/model"

	"github.com/go-resty/resty/v2"
)

// Decision 一次审核决定的推送内容
type Decision struct {
	ProjectID   uint         `json:"project_id"`
	Title       string       `json:"title"`
	Action      model.Action `json:"action"`
	Status      model.Status `json:"status"`
	Comment     string       `json:"comment,omitempty"`
	ModeratorID *uint        `json:"moderator_id,omitempty"`
	Authors     []string     `json:"authors"`
	At          time.Time    `json:"at"`
}

// NewDecision 从审核后的项目构造推送内容，Students 需已预加载
func NewDecision(p *model.Project, action model.Action) Decision {
	d := Decision{
		ProjectID:   p.ID,
		Title:       p.Title,
		Action:      action,
		Status:      p.Status,
		Comment:     p.ModerationComment,
		ModeratorID: p.ModeratedByID,
		Authors:     make([]string, 0, len(p.Students)),
		At:          time.Now(),
	}
	if p.ModeratedAt != nil {
		d.At = *p.ModeratedAt
	}
	for _, s := range p.Students {
		d.Authors = append(d.Authors, s.User.Username)
	}
	return d
}

// Send 同步发送，未配置 webhook 时直接返回
func Send(ctx context.Context, client *resty.Client, url string, d Decision) error {
	if url == "" || client == nil {
		return nil
	}
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(d).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook 返回 %d", resp.StatusCode())
	}
	return nil
}

// Moderation 推送审核结果，失败只记录日志，不影响审核本身
func Moderation(ctx context.Context, d Decision) {
	url := config.Get().Notify.WebhookURL
	if url == "" || httpclient.Client == nil {
		return
	}
	if err := Send(ctx, httpclient.Client, url, d); err != nil {
		logger.New("Notify").Warn("审核结果推送失败", "project_id", d.ProjectID, "action", d.Action, "error", err)
	}
}
