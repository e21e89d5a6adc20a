package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
const (
	AuditActionCreate       = "create"
	AuditActionUpdate       = "update"
	AuditActionDelete       = "delete"
	AuditActionStatusChange = "status_change"
	AuditActionApprove      = "approve"
	AuditActionReject       = "reject"
)

// AuditEntry is one immutable record in the append-only audit log. Entries
// are written in the same transaction as the mutation they describe and are
// never edited or deleted. A deleted product leaves its entries orphaned;
// ProductID is a lookup key, not a foreign key.
type AuditEntry struct {
	ID          uuid.UUID      `json:"id"`
	Action      string         `json:"action"`
	ProductID   uuid.UUID      `json:"product_id"`
	ProductName string         `json:"product_name"`
	User        string         `json:"user"`
	Role        Role           `json:"role"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
