package model

import (
	"testing"
	"time"

	"project-portal/config"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
		ok     bool
	}{
		{StatusPending, ActionApprove, true},
		{StatusPending, ActionReject, true},
		{StatusPending, ActionRevision, true},
		{StatusDraft, ActionResubmit, true},
		{StatusRevision, ActionResubmit, true},

		{StatusPublished, ActionApprove, false},
		{StatusRejected, ActionApprove, false},
		{StatusRevision, ActionApprove, false},
		{StatusDraft, ActionReject, false},
		{StatusPending, ActionResubmit, false},
		{StatusPublished, ActionResubmit, false},
		{StatusArchived, ActionResubmit, false},
		{StatusPending, Action("delete"), false},
	}
	for _, c := range cases {
		require.Equal(t, c.ok, CanTransition(c.from, c.action), "%s -> %s", c.from, c.action)
	}
}

func TestModerateApprove(t *testing.T) {
	teacherID := uint(7)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := &Project{Status: StatusPending, ModerationComment: "old"}

	require.NoError(t, p.Moderate(ActionApprove, &teacherID, "ignored", now))
	require.Equal(t, StatusPublished, p.Status)
	require.Equal(t, &teacherID, p.ModeratedByID)
	require.Empty(t, p.ModerationComment)
	require.Equal(t, now, *p.ModeratedAt)
	require.Equal(t, now, *p.PublishedAt)
}

func TestModerateRejectKeepsComment(t *testing.T) {
	now := time.Now()
	p := &Project{Status: StatusPending}

	// 没有教师身份的管理员审核时审核人为空
	require.NoError(t, p.Moderate(ActionReject, nil, "抄袭", now))
	require.Equal(t, StatusRejected, p.Status)
	require.Nil(t, p.ModeratedByID)
	require.Equal(t, "抄袭", p.ModerationComment)
	require.Nil(t, p.PublishedAt)
}

func TestModerateIllegalLeavesProjectUnchanged(t *testing.T) {
	p := &Project{Status: StatusPublished, ModerationComment: "keep"}

	err := p.Moderate(ActionRevision, nil, "x", time.Now())
	require.ErrorIs(t, err, ErrIllegalTransition)
	require.Equal(t, StatusPublished, p.Status)
	require.Equal(t, "keep", p.ModerationComment)
	require.Nil(t, p.ModeratedAt)

	// resubmit 不是审核人动作
	p.Status = StatusRevision
	require.ErrorIs(t, p.Moderate(ActionResubmit, nil, "", time.Now()), ErrIllegalTransition)
}

func TestResubmit(t *testing.T) {
	id := uint(3)
	p := &Project{Status: StatusRevision, ModeratedByID: &id, ModerationComment: "补充实验"}
	require.NoError(t, p.Resubmit())
	require.Equal(t, StatusPending, p.Status)
	require.Nil(t, p.ModeratedByID)
	require.Empty(t, p.ModerationComment)

	require.ErrorIs(t, p.Resubmit(), ErrIllegalTransition)
}

func TestKeywordList(t *testing.T) {
	p := &Project{Keywords: " go, , gin ,gorm,"}
	require.Equal(t, []string{"go", "gin", "gorm"}, p.KeywordList())

	p.Keywords = ""
	require.Empty(t, p.KeywordList())
}

func TestCardWithoutRelations(t *testing.T) {
	config.Set(nil)
	p := &Project{ID: 12, Title: "t", Status: StatusPublished, FileKey: "k", FileName: "a.pdf"}
	card := p.Card()
	require.Nil(t, card.Subject)
	require.Nil(t, card.Teacher)
	require.Empty(t, card.Authors)
	require.Equal(t, "/project/12", card.URL)

	c := config.Default()
	c.Prefix = "api"
	config.Set(c)
	t.Cleanup(func() { config.Set(nil) })
	require.Equal(t, "/api/project/12", p.URL())
	require.Equal(t, "a.pdf", card.FileName)
}
