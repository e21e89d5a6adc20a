package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/access"
	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// ProductService handles product lifecycle outside the approval state
// machine: creation, field edits (authorized per field owner), listing with
// dashboard filters, and deletion.
type ProductService interface {
	// Create makes a new draft product.
	Create(ctx context.Context) (*models.Product, error)

	// Get returns one product.
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// List returns products filtered by status and search query.
	List(ctx context.Context, status models.ProductStatus, search string) ([]*models.Product, error)

	// CountByStatus returns dashboard counts.
	CountByStatus(ctx context.Context) (map[models.ProductStatus]int, error)

	// UpdateFields writes field values after checking each one against the
	// ownership table. Locked products reject all edits.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Product, error)

	// Delete removes a product. Its audit trail and notifications stay.
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	db       *database.DB
	repo     repositories.ProductRepository
	audit    AuditService
	policy   *access.Policy
	notifier ChangeNotifier
	logger   *zap.Logger
}

// ProductServiceDeps contains dependencies for ProductService.
type ProductServiceDeps struct {
	DB       *database.DB
	Repo     repositories.ProductRepository
	Audit    AuditService
	Policy   *access.Policy
	Notifier ChangeNotifier // Optional: defaults to a logging notifier
	Logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(deps *ProductServiceDeps) ProductService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewLoggingNotifier(deps.Logger)
	}
	return &productService{
		db:       deps.DB,
		repo:     deps.Repo,
		audit:    deps.Audit,
		policy:   deps.Policy,
		notifier: notifier,
		logger:   deps.Logger.Named("product-service"),
	}
}

var _ ProductService = (*productService)(nil)

func (s *productService) Create(ctx context.Context) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	product := &models.Product{
		Status: models.StatusDraft,
		Data:   map[string]any{},
	}
	product.AppendHistory(models.StatusDraft, session.Name, "", time.Now())

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, product); err != nil {
			return err
		}
		return s.audit.Log(txCtx, models.AuditActionCreate, product.ID, product.Name(), nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, product.ID)
	return product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, status models.ProductStatus, search string) ([]*models.Product, error) {
	products, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return products, nil
	}

	query := strings.ToLower(search)
	var filtered []*models.Product
	for _, p := range products {
		if matchesSearch(p, query) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// matchesSearch checks the same fields the dashboard search box covers.
func matchesSearch(p *models.Product, query string) bool {
	for _, field := range []string{"marketingName", "partner", "productGroup", "productCode"} {
		if v, ok := p.Data[field].(string); ok && strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

func (s *productService) CountByStatus(ctx context.Context) (map[models.ProductStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *productService) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if p.Status.IsTerminal() {
			return apperrors.ErrProductLocked
		}

		changed := make(map[string]any, len(fields))
		for name, value := range fields {
			allowed, owner := s.policy.CanEditField(session.Role, name)
			if !allowed {
				return &apperrors.FieldAccessError{Field: name, Owner: owner.String()}
			}
			if p.Data == nil {
				p.Data = map[string]any{}
			}
			p.Data[name] = value
			changed[name] = value
		}

		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}
		if err := s.audit.Log(txCtx, models.AuditActionUpdate, p.ID, p.Name(), map[string]any{
			"fields": changed,
		}); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, id)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if p.Status.IsTerminal() {
			return apperrors.ErrProductLocked
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		// Audit and notifications keep their back-references; nothing cascades.
		return s.audit.Log(txCtx, models.AuditActionDelete, p.ID, p.Name(), nil)
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.notifier.ProductChanged(ctx, id)
	return nil
}
