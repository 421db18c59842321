package model

import (
	"errors"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"     // 草稿
	StatusPending   Status = "pending"   // 待审核
	StatusPublished Status = "published" // 已发布
	StatusRejected  Status = "rejected"  // 已拒绝
	StatusRevision  Status = "revision"  // 退回修改
	StatusArchived  Status = "archived"  // 已归档
)

// Statuses 全部状态，管理员直接修改状态时用于校验
var Statuses = []Status{StatusDraft, StatusPending, StatusPublished, StatusRejected, StatusRevision, StatusArchived}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Action 审核动作
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionRevision Action = "revision"
	ActionResubmit Action = "resubmit"
)

var ErrIllegalTransition = errors.New("illegal status transition")

type transition struct {
	from []Status
	to   Status
}

// published 和 rejected 对自动流程是终态，只能由管理员直接修改
var transitions = map[Action]transition{
	ActionApprove:  {from: []Status{StatusPending}, to: StatusPublished},
	ActionReject:   {from: []Status{StatusPending}, to: StatusRejected},
	ActionRevision: {from: []Status{StatusPending}, to: StatusRevision},
	ActionResubmit: {from: []Status{StatusDraft, StatusRevision}, to: StatusPending},
}

// CanTransition 判断 from 状态下能否执行 action
func CanTransition(from Status, action Action) bool {
	t, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}

// Target 动作的目标状态
func (a Action) Target() (Status, bool) {
	t, ok := transitions[a]
	return t.to, ok
}

// IsModeration 是否为审核人动作（resubmit 由作者发起）
func (a Action) IsModeration() bool {
	return a == ActionApprove || a == ActionReject || a == ActionRevision
}

// Moderate 执行审核动作，moderatorID 为空表示由没有教师身份的管理员操作
func (p *Project) Moderate(action Action, moderatorID *uint, comment string, now time.Time) error {
	if !action.IsModeration() || !CanTransition(p.Status, action) {
		return ErrIllegalTransition
	}
	p.Status, _ = action.Target()
	p.ModeratedByID = moderatorID
	p.ModeratedBy = nil
	p.ModeratedAt = &now
	switch action {
	case ActionApprove:
		p.ModerationComment = ""
		p.PublishedAt = &now
	default:
		p.ModerationComment = comment
	}
	return nil
}

// Resubmit 作者重新提交审核，清空上一轮的审核信息
func (p *Project) Resubmit() error {
	if !CanTransition(p.Status, ActionResubmit) {
		return ErrIllegalTransition
	}
	p.Status = StatusPending
	p.ModeratedByID = nil
	p.ModeratedBy = nil
	p.ModerationComment = ""
	return nil
}
