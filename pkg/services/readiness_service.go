package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// ReadinessService computes the launch-readiness score on demand from the
// three independent completion signals: role approvals, uploaded artifacts
// and the launch checklist. Nothing is persisted; every call derives fresh.
type ReadinessService interface {
	Compute(ctx context.Context, productID uuid.UUID) (models.ReadinessSnapshot, error)
}

type readinessService struct {
	productRepo   repositories.ProductRepository
	artifactRepo  repositories.ArtifactRepository
	checklistRepo repositories.ChecklistRepository
}

// NewReadinessService creates a new ReadinessService.
func NewReadinessService(
	productRepo repositories.ProductRepository,
	artifactRepo repositories.ArtifactRepository,
	checklistRepo repositories.ChecklistRepository,
) ReadinessService {
	return &readinessService{
		productRepo:   productRepo,
		artifactRepo:  artifactRepo,
		checklistRepo: checklistRepo,
	}
}

var _ ReadinessService = (*readinessService)(nil)

func (s *readinessService) Compute(ctx context.Context, productID uuid.UUID) (models.ReadinessSnapshot, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return models.ReadinessSnapshot{}, err
	}

	artifacts, err := s.artifactRepo.CountByProduct(ctx, productID)
	if err != nil {
		return models.ReadinessSnapshot{}, fmt.Errorf("count artifacts: %w", err)
	}

	checked, err := s.checklistRepo.CountChecked(ctx, productID)
	if err != nil {
		return models.ReadinessSnapshot{}, fmt.Errorf("count checklist: %w", err)
	}

	return models.ComputeReadiness(
		product.ApprovedCount(), len(models.AllRoles),
		artifacts, len(models.AllArtifactTypes),
		checked, len(models.AllChecklistItems),
	), nil
}
