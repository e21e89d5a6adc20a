package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// LaunchService tracks the two readiness inputs that live outside the
// product record: required document artifacts and the launch checklist.
// Artifact kinds are role-owned; uploading or deleting one is authorized
// like a field edit.
type LaunchService interface {
	// UploadArtifact records a document upload of a required kind.
	UploadArtifact(ctx context.Context, productID uuid.UUID, typ models.ArtifactType, fileName string) error

	// DeleteArtifact removes an uploaded document.
	DeleteArtifact(ctx context.Context, productID uuid.UUID, typ models.ArtifactType) error

	// ListArtifacts returns the uploaded artifacts for a product.
	ListArtifacts(ctx context.Context, productID uuid.UUID) ([]*models.Artifact, error)

	// SetChecklistItem toggles one launch pre-condition.
	SetChecklistItem(ctx context.Context, productID uuid.UUID, item models.ChecklistItem, checked bool) error

	// GetChecklist returns the touched checklist rows for a product.
	GetChecklist(ctx context.Context, productID uuid.UUID) ([]*models.ChecklistState, error)
}

type launchService struct {
	db            *database.DB
	productRepo   repositories.ProductRepository
	artifactRepo  repositories.ArtifactRepository
	checklistRepo repositories.ChecklistRepository
	audit         AuditService
	notifier      ChangeNotifier
	logger        *zap.Logger
}

// LaunchServiceDeps contains dependencies for LaunchService.
type LaunchServiceDeps struct {
	DB            *database.DB
	ProductRepo   repositories.ProductRepository
	ArtifactRepo  repositories.ArtifactRepository
	ChecklistRepo repositories.ChecklistRepository
	Audit         AuditService
	Notifier      ChangeNotifier // Optional: defaults to a logging notifier
	Logger        *zap.Logger
}

// NewLaunchService creates a new LaunchService.
func NewLaunchService(deps *LaunchServiceDeps) LaunchService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewLoggingNotifier(deps.Logger)
	}
	return &launchService{
		db:            deps.DB,
		productRepo:   deps.ProductRepo,
		artifactRepo:  deps.ArtifactRepo,
		checklistRepo: deps.ChecklistRepo,
		audit:         deps.Audit,
		notifier:      notifier,
		logger:        deps.Logger.Named("launch-service"),
	}
}

var _ LaunchService = (*launchService)(nil)

func (s *launchService) UploadArtifact(ctx context.Context, productID uuid.UUID, typ models.ArtifactType, fileName string) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}
	if !models.IsValidArtifactType(typ) {
		return apperrors.ErrNotFound
	}
	if owner := models.ArtifactOwners[typ]; owner != session.Role {
		return &apperrors.FieldAccessError{Field: string(typ), Owner: owner.String()}
	}

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedProduct(txCtx, productID)
		if err != nil {
			return err
		}
		if err := s.artifactRepo.Upsert(txCtx, &models.Artifact{
			ProductID:  productID,
			Type:       typ,
			FileName:   fileName,
			UploadedBy: session.Name,
		}); err != nil {
			return err
		}
		return s.audit.Log(txCtx, models.AuditActionUpdate, p.ID, p.Name(), map[string]any{
			"artifact": typ,
			"file":     fileName,
		})
	})
	if err != nil {
		return err
	}

	s.notifier.ProductChanged(ctx, productID)
	return nil
}

func (s *launchService) DeleteArtifact(ctx context.Context, productID uuid.UUID, typ models.ArtifactType) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}
	if !models.IsValidArtifactType(typ) {
		return apperrors.ErrNotFound
	}
	if owner := models.ArtifactOwners[typ]; owner != session.Role {
		return &apperrors.FieldAccessError{Field: string(typ), Owner: owner.String()}
	}

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedProduct(txCtx, productID)
		if err != nil {
			return err
		}
		if err := s.artifactRepo.Delete(txCtx, productID, typ); err != nil {
			return err
		}
		return s.audit.Log(txCtx, models.AuditActionUpdate, p.ID, p.Name(), map[string]any{
			"artifact_deleted": typ,
		})
	})
	if err != nil {
		return err
	}

	s.notifier.ProductChanged(ctx, productID)
	return nil
}

func (s *launchService) ListArtifacts(ctx context.Context, productID uuid.UUID) ([]*models.Artifact, error) {
	return s.artifactRepo.GetByProduct(ctx, productID)
}

func (s *launchService) SetChecklistItem(ctx context.Context, productID uuid.UUID, item models.ChecklistItem, checked bool) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}
	if !models.IsValidChecklistItem(item) {
		return apperrors.ErrNotFound
	}

	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedProduct(txCtx, productID)
		if err != nil {
			return err
		}
		if err := s.checklistRepo.SetChecked(txCtx, productID, item, checked, session.Name); err != nil {
			return err
		}
		return s.audit.Log(txCtx, models.AuditActionUpdate, p.ID, p.Name(), map[string]any{
			"checklist_item": item,
			"checked":        checked,
		})
	})
	if err != nil {
		return err
	}

	s.notifier.ProductChanged(ctx, productID)
	return nil
}

func (s *launchService) GetChecklist(ctx context.Context, productID uuid.UUID) ([]*models.ChecklistState, error) {
	return s.checklistRepo.GetByProduct(ctx, productID)
}

func (s *launchService) lockedProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return nil, apperrors.ErrProductLocked
	}
	return p, nil
}
