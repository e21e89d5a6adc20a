package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// AuditService logs state-changing actions to the append-only audit trail.
// The actor is taken from the session context; entries are written inside
// the same transaction as the mutation they describe.
type AuditService interface {
	// Log appends one audit entry for the given action.
	Log(ctx context.Context, action string, productID uuid.UUID, productName string, details map[string]any) error

	// GetByProduct returns entries for a product, newest first.
	GetByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*models.AuditEntry, error)

	// GetRecent returns the most recent entries across all products.
	GetRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}

type auditService struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.Named("audit-service"),
	}
}

var _ AuditService = (*auditService)(nil)

func (s *auditService) Log(ctx context.Context, action string, productID uuid.UUID, productName string, details map[string]any) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		// Audit logging must not break the main operation, but an entry
		// without an actor is useless. Warn and skip.
		s.logger.Warn("No session context for audit entry",
			zap.String("action", action),
			zap.String("product_id", productID.String()))
		return nil
	}

	entry := &models.AuditEntry{
		Action:      action,
		ProductID:   productID,
		ProductName: productName,
		User:        session.Name,
		Role:        session.Role,
		Details:     details,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to create audit entry",
			zap.String("action", action),
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

func (s *auditService) GetByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.repo.GetByProduct(ctx, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("get audit entries: %w", err)
	}
	return entries, nil
}

func (s *auditService) GetRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.repo.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get audit entries: %w", err)
	}
	return entries, nil
}
