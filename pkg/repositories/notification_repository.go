package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
)

// NotificationRepository provides data access for workflow notifications.
// The list is capped: inserting past the cap evicts the oldest entries.
type NotificationRepository interface {
	// Create inserts a notification and evicts entries beyond the cap,
	// oldest first.
	Create(ctx context.Context, n *models.Notification) error

	// List returns notifications newest first.
	List(ctx context.Context, limit int) ([]*models.Notification, error)

	// MarkRead flips the read flag on one notification.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flips the read flag on every notification.
	MarkAllRead(ctx context.Context) error

	// CountUnread returns the number of unread notifications.
	CountUnread(ctx context.Context) (int, error)
}

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *database.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

var _ NotificationRepository = (*notificationRepository)(nil)

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	q := r.db.QuerierFrom(ctx)

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO engine_notifications (
			id, type, title, message, product_id, product_name, target_role, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := q.Exec(ctx, query,
		n.ID, n.Type, n.Title, n.Message, n.ProductID, n.ProductName,
		n.TargetRole, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	// FIFO eviction: keep only the newest entries up to the cap.
	evict := `
		DELETE FROM engine_notifications
		WHERE id NOT IN (
			SELECT id FROM engine_notifications
			ORDER BY created_at DESC, id
			LIMIT $1
		)`
	if _, err := q.Exec(ctx, evict, models.NotificationCap); err != nil {
		return fmt.Errorf("failed to evict old notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]*models.Notification, error) {
	q := r.db.QuerierFrom(ctx)

	if limit <= 0 || limit > models.NotificationCap {
		limit = models.NotificationCap
	}

	query := `
		SELECT id, type, title, message, product_id, product_name, target_role, read, created_at
		FROM engine_notifications
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.ProductID,
			&n.ProductName, &n.TargetRole, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	tag, err := q.Exec(ctx, `UPDATE engine_notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context) error {
	q := r.db.QuerierFrom(ctx)

	if _, err := q.Exec(ctx, `UPDATE engine_notifications SET read = TRUE WHERE read = FALSE`); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context) (int, error) {
	q := r.db.QuerierFrom(ctx)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM engine_notifications WHERE read = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
