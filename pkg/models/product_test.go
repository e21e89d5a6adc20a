package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ProductStatus
		to      ProductStatus
		allowed bool
	}{
		{"draft to approval", StatusDraft, StatusApproval, true},
		{"draft to approved", StatusDraft, StatusApproved, false},
		{"draft to sent_to_cb", StatusDraft, StatusSentToCB, false},
		{"approval to approved", StatusApproval, StatusApproved, true},
		{"approval back to draft", StatusApproval, StatusDraft, true},
		{"approval to sent_to_cb", StatusApproval, StatusSentToCB, false},
		{"approved back to approval", StatusApproved, StatusApproval, true},
		{"approved to sent_to_cb", StatusApproved, StatusSentToCB, true},
		{"approved to draft", StatusApproved, StatusDraft, false},
		{"sent_to_cb to draft", StatusSentToCB, StatusDraft, false},
		{"sent_to_cb to approval", StatusSentToCB, StatusApproval, false},
		{"sent_to_cb to approved", StatusSentToCB, StatusApproved, false},
		{"self transition", StatusDraft, StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusSentToCB.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusApproval.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
}

func TestProductName(t *testing.T) {
	p := &Product{}
	assert.Equal(t, "Без названия", p.Name())

	p.Data = map[string]any{"marketingName": ""}
	assert.Equal(t, "Без названия", p.Name())

	p.Data["marketingName"] = "Защита дома"
	assert.Equal(t, "Защита дома", p.Name())
}

func TestEnsureApprovals(t *testing.T) {
	p := &Product{}
	p.EnsureApprovals()

	require.Len(t, p.Approvals, 4)
	for _, role := range AllRoles {
		record, ok := p.Approvals[role]
		require.True(t, ok)
		assert.False(t, record.Approved)
		assert.Nil(t, record.Date)
	}

	// Existing records survive repeated calls
	now := time.Now()
	p.Approvals[RoleActuary] = ApprovalRecord{Approved: true, Date: &now}
	p.EnsureApprovals()
	assert.True(t, p.Approvals[RoleActuary].Approved)
}

func TestResetApprovals(t *testing.T) {
	p := &Product{}
	p.EnsureApprovals()
	now := time.Now()
	for _, role := range AllRoles {
		p.Approvals[role] = ApprovalRecord{Approved: true, Comment: "ok", Date: &now}
	}

	p.ResetApprovals()

	require.Len(t, p.Approvals, 4)
	for _, role := range AllRoles {
		assert.False(t, p.Approvals[role].Approved)
		assert.Empty(t, p.Approvals[role].Comment)
	}
}

func TestAllApproved(t *testing.T) {
	p := &Product{}
	assert.False(t, p.AllApproved(), "empty approval map is not unanimous")

	p.EnsureApprovals()
	assert.False(t, p.AllApproved())

	for _, role := range AllRoles {
		p.Approvals[role] = ApprovalRecord{Approved: true}
	}
	assert.True(t, p.AllApproved())

	p.Approvals[RoleMethodologist] = ApprovalRecord{Approved: false}
	assert.False(t, p.AllApproved())
}

func TestApprovedCount(t *testing.T) {
	p := &Product{}
	assert.Equal(t, 0, p.ApprovedCount())

	p.EnsureApprovals()
	p.Approvals[RoleProductOwner] = ApprovalRecord{Approved: true}
	p.Approvals[RoleUnderwriter] = ApprovalRecord{Approved: true}
	assert.Equal(t, 2, p.ApprovedCount())
}

func TestPendingReturnRequests(t *testing.T) {
	p := &Product{
		ReturnRequests: []ReturnRequest{
			{Role: RoleActuary, Status: ReturnRequestPending},
			{Role: RoleUnderwriter, Status: ReturnRequestProcessed},
			{Role: RoleMethodologist, Status: ReturnRequestPending},
		},
	}
	pending := p.PendingReturnRequests()
	require.Len(t, pending, 2)
	assert.Equal(t, RoleActuary, pending[0].Role)
	assert.Equal(t, RoleMethodologist, pending[1].Role)
}

func TestDeriveApprovalButton(t *testing.T) {
	tests := []struct {
		name     string
		status   ProductStatus
		approved bool
		label    string
		enabled  bool
	}{
		{"draft", StatusDraft, false, "Отправить на согласование", true},
		{"approval not yet approved", StatusApproval, false, "Согласовать", true},
		{"approval already approved", StatusApproval, true, "Уже согласовано", false},
		{"approved", StatusApproved, false, "Отправить в ЦБ", true},
		{"sent to regulator", StatusSentToCB, false, "Отправлено в ЦБ", false},
		{"sent to regulator after own approval", StatusSentToCB, true, "Отправлено в ЦБ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			button := DeriveApprovalButton(tt.status, tt.approved)
			assert.Equal(t, tt.label, button.Label)
			assert.Equal(t, tt.enabled, button.Enabled)
		})
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Черновик", StatusDraft.Label())
	assert.Equal(t, "На согласовании", StatusApproval.Label())
	assert.Equal(t, "Согласовано", StatusApproved.Label())
	assert.Equal(t, "Отправлено в ЦБ", StatusSentToCB.Label())
	assert.Equal(t, "bogus", ProductStatus("bogus").Label())
}
