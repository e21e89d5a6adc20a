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

// ArtifactRepository tracks which required documents have been uploaded
// per product. Artifact kinds are a fixed set; one row per (product, kind).
type ArtifactRepository interface {
	// Upsert records an upload, replacing a previous one of the same kind.
	Upsert(ctx context.Context, artifact *models.Artifact) error

	// Delete removes an uploaded artifact.
	Delete(ctx context.Context, productID uuid.UUID, artifactType models.ArtifactType) error

	// GetByProduct returns the uploaded artifacts for a product.
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Artifact, error)

	// CountByProduct returns how many artifact kinds have uploads.
	CountByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

type artifactRepository struct {
	db *database.DB
}

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(db *database.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

var _ ArtifactRepository = (*artifactRepository)(nil)

func (r *artifactRepository) Upsert(ctx context.Context, artifact *models.Artifact) error {
	q := r.db.QuerierFrom(ctx)

	if artifact.UploadedAt.IsZero() {
		artifact.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO engine_artifacts (product_id, artifact_type, file_name, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, artifact_type)
		DO UPDATE SET file_name = EXCLUDED.file_name,
		              uploaded_by = EXCLUDED.uploaded_by,
		              uploaded_at = EXCLUDED.uploaded_at`

	_, err := q.Exec(ctx, query,
		artifact.ProductID, artifact.Type, artifact.FileName,
		artifact.UploadedBy, artifact.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert artifact: %w", err)
	}
	return nil
}

func (r *artifactRepository) Delete(ctx context.Context, productID uuid.UUID, artifactType models.ArtifactType) error {
	q := r.db.QuerierFrom(ctx)

	tag, err := q.Exec(ctx,
		`DELETE FROM engine_artifacts WHERE product_id = $1 AND artifact_type = $2`,
		productID, artifactType)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *artifactRepository) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Artifact, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT product_id, artifact_type, file_name, uploaded_by, uploaded_at
		FROM engine_artifacts
		WHERE product_id = $1
		ORDER BY artifact_type`

	rows, err := q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		var a models.Artifact
		if err := rows.Scan(&a.ProductID, &a.Type, &a.FileName, &a.UploadedBy, &a.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}
	return artifacts, nil
}

func (r *artifactRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	q := r.db.QuerierFrom(ctx)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM engine_artifacts WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count artifacts: %w", err)
	}
	return count, nil
}
