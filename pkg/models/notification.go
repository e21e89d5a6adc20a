package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies workflow alerts.
type NotificationType string

const (
	NotificationStatusChange     NotificationType = "status_change"
	NotificationApprovalGranted  NotificationType = "approval_granted"
	NotificationApprovalRejected NotificationType = "approval_rejected"
	NotificationReturnRequest    NotificationType = "return_request"
	NotificationSentToRegulator  NotificationType = "sent_to_regulator"
)

// NotificationCap is the number of most recent notifications kept.
// Older entries are evicted FIFO on insert.
const NotificationCap = 100

// Notification is a human-readable alert derived from a workflow transition.
// TargetRole records the ACTOR's role at creation time; there is no recipient
// routing, every notification is visible in the panel, scoped by recency.
// The only mutation ever applied is flipping Read.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	ProductID   uuid.UUID        `json:"product_id"`
	ProductName string           `json:"product_name"`
	TargetRole  Role             `json:"target_role"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
