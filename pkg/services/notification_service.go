package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// NotificationMetrics counts emitted notifications. A nil value disables
// counting.
type NotificationMetrics interface {
	NotificationEmitted(typ models.NotificationType)
}

// NotificationService derives human-readable alerts from workflow
// transitions. Notifications are stamped with the ACTING role at creation
// time; there is no recipient routing. The list keeps only the 100 most
// recent entries, and the only mutation is flipping the read flag.
type NotificationService interface {
	// Notify appends a notification attributed to the session's role.
	Notify(ctx context.Context, typ models.NotificationType, title, message string, productID uuid.UUID, productName string) error

	// List returns notifications newest first.
	List(ctx context.Context, limit int) ([]*models.Notification, error)

	// MarkRead flips the read flag on one notification.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flips the read flag on all notifications.
	MarkAllRead(ctx context.Context) error

	// CountUnread returns the unread badge count.
	CountUnread(ctx context.Context) (int, error)
}

type notificationService struct {
	repo    repositories.NotificationRepository
	metrics NotificationMetrics
	logger  *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository, metrics NotificationMetrics, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:    repo,
		metrics: metrics,
		logger:  logger.Named("notification-service"),
	}
}

var _ NotificationService = (*notificationService)(nil)

func (s *notificationService) Notify(ctx context.Context, typ models.NotificationType, title, message string, productID uuid.UUID, productName string) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		s.logger.Warn("No session context for notification",
			zap.String("type", string(typ)),
			zap.String("product_id", productID.String()))
		return nil
	}

	n := &models.Notification{
		Type:        typ,
		Title:       title,
		Message:     message,
		ProductID:   productID,
		ProductName: productName,
		TargetRole:  session.Role,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.String("type", string(typ)),
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return fmt.Errorf("create notification: %w", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationEmitted(typ)
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, limit int) ([]*models.Notification, error) {
	notifications, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	if err := s.repo.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) CountUnread(ctx context.Context) (int, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
