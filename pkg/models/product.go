package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Product Status
// ============================================================================

// ProductStatus represents where a product sits in the approval workflow.
// State machine:
//
//	draft → approval → approved → sent_to_cb
//	          ↓ ↑          ↓
//	        draft       approval
//
// sent_to_cb is terminal. Unanimous approval at "approval" dispatches the
// product straight to sent_to_cb; the "approved" status is reachable only
// through a manual status change.
type ProductStatus string

const (
	StatusDraft    ProductStatus = "draft"
	StatusApproval ProductStatus = "approval"
	StatusApproved ProductStatus = "approved"
	StatusSentToCB ProductStatus = "sent_to_cb"
)

// ValidProductStatuses contains all valid status values.
var ValidProductStatuses = []ProductStatus{
	StatusDraft,
	StatusApproval,
	StatusApproved,
	StatusSentToCB,
}

// statusTransitions is the legal edge set for explicit status changes.
var statusTransitions = map[ProductStatus][]ProductStatus{
	StatusDraft:    {StatusApproval},
	StatusApproval: {StatusApproved, StatusDraft},
	StatusApproved: {StatusApproval, StatusSentToCB},
	StatusSentToCB: {},
}

// statusLabels are the human-readable labels shown in history and notifications.
var statusLabels = map[ProductStatus]string{
	StatusDraft:    "Черновик",
	StatusApproval: "На согласовании",
	StatusApproved: "Согласовано",
	StatusSentToCB: "Отправлено в ЦБ",
}

// IsValidProductStatus checks if the given status is valid.
func IsValidProductStatus(s ProductStatus) bool {
	for _, v := range ValidProductStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransitionTo returns true if an explicit change from this status to the
// target is legal. Rollback on rejection and the unanimous-approval dispatch
// are forced by the workflow service and do not consult this table.
func (s ProductStatus) CanTransitionTo(target ProductStatus) bool {
	for _, v := range statusTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the product has been sent to the regulator.
func (s ProductStatus) IsTerminal() bool {
	return s == StatusSentToCB
}

// Label returns the human-readable Russian label for the status.
func (s ProductStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ============================================================================
// Approval bookkeeping
// ============================================================================

// ApprovalRecord tracks one role's sign-off on a product.
type ApprovalRecord struct {
	Approved bool       `json:"approved"`
	Comment  string     `json:"comment"`
	Date     *time.Time `json:"date"`
}

// StatusHistoryEntry is one append-only record of a status change.
type StatusHistoryEntry struct {
	Status    ProductStatus `json:"status"`
	Date      time.Time     `json:"date"`
	ChangedBy string        `json:"changed_by"`
	Comment   string        `json:"comment,omitempty"`
}

// ReturnRequestStatus is the lifecycle of a return-to-approval request.
type ReturnRequestStatus string

const (
	ReturnRequestPending   ReturnRequestStatus = "pending"
	ReturnRequestProcessed ReturnRequestStatus = "processed"
)

// ReturnRequest is a non-owning role's ask to reopen the approval round.
// It does not change status by itself; the product owner acts on it.
type ReturnRequest struct {
	Role    Role                `json:"role"`
	Comment string              `json:"comment"`
	Date    time.Time           `json:"date"`
	Status  ReturnRequestStatus `json:"status"`
}

// ============================================================================
// Product
// ============================================================================

// Product is a draft insurance-product definition moving through the
// approval workflow. Field ownership is static configuration, not stored
// per instance; Data holds raw field values keyed by field name.
type Product struct {
	ID             uuid.UUID               `json:"id"`
	Status         ProductStatus           `json:"status"`
	Data           map[string]any          `json:"data"`
	Approvals      map[Role]ApprovalRecord `json:"approvals,omitempty"`
	StatusHistory  []StatusHistoryEntry    `json:"status_history"`
	ReturnRequests []ReturnRequest         `json:"return_requests,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// Name returns the product's marketing name, or a placeholder when unset.
func (p *Product) Name() string {
	if p.Data != nil {
		if name, ok := p.Data["marketingName"].(string); ok && name != "" {
			return name
		}
	}
	return "Без названия"
}

// EnsureApprovals initializes the approval map with all four roles
// unapproved. Called when a product first enters the approval round.
func (p *Product) EnsureApprovals() {
	if p.Approvals != nil {
		return
	}
	p.Approvals = make(map[Role]ApprovalRecord, len(AllRoles))
	for _, role := range AllRoles {
		p.Approvals[role] = ApprovalRecord{}
	}
}

// ResetApprovals wipes all four roles back to unapproved.
// Only the return-to-approval operation does this.
func (p *Product) ResetApprovals() {
	p.Approvals = nil
	p.EnsureApprovals()
}

// AllApproved returns true once every role has signed off.
func (p *Product) AllApproved() bool {
	if len(p.Approvals) < len(AllRoles) {
		return false
	}
	for _, role := range AllRoles {
		if !p.Approvals[role].Approved {
			return false
		}
	}
	return true
}

// ApprovedCount returns how many of the four roles have signed off.
func (p *Product) ApprovedCount() int {
	n := 0
	for _, a := range p.Approvals {
		if a.Approved {
			n++
		}
	}
	return n
}

// RoleApproved returns true if the given role has signed off.
func (p *Product) RoleApproved(role Role) bool {
	return p.Approvals[role].Approved
}

// AppendHistory appends a status history entry. History is append-only.
func (p *Product) AppendHistory(status ProductStatus, changedBy, comment string, at time.Time) {
	p.StatusHistory = append(p.StatusHistory, StatusHistoryEntry{
		Status:    status,
		Date:      at,
		ChangedBy: changedBy,
		Comment:   comment,
	})
}

// PendingReturnRequests returns the return requests still awaiting the
// product owner's action.
func (p *Product) PendingReturnRequests() []ReturnRequest {
	var pending []ReturnRequest
	for _, rr := range p.ReturnRequests {
		if rr.Status == ReturnRequestPending {
			pending = append(pending, rr)
		}
	}
	return pending
}

// ============================================================================
// Approval button derivation
// ============================================================================

// ApprovalButton describes the state of the main workflow button for the
// current role. Pure derivation from (status, current role's approval state).
type ApprovalButton struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// DeriveApprovalButton computes the workflow button for the given status and
// whether the current role has already approved.
func DeriveApprovalButton(status ProductStatus, currentRoleApproved bool) ApprovalButton {
	switch status {
	case StatusDraft:
		return ApprovalButton{Label: "Отправить на согласование", Enabled: true}
	case StatusApproval:
		if currentRoleApproved {
			return ApprovalButton{Label: "Уже согласовано", Enabled: false}
		}
		return ApprovalButton{Label: "Согласовать", Enabled: true}
	case StatusApproved:
		return ApprovalButton{Label: "Отправить в ЦБ", Enabled: true}
	case StatusSentToCB:
		return ApprovalButton{Label: "Отправлено в ЦБ", Enabled: false}
	default:
		return ApprovalButton{}
	}
}
