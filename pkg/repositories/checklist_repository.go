package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
)

// ChecklistRepository tracks launch checklist state per product.
// The item set is fixed; one row per (product, item) once touched.
type ChecklistRepository interface {
	// SetChecked toggles one checklist item.
	SetChecked(ctx context.Context, productID uuid.UUID, item models.ChecklistItem, checked bool, updatedBy string) error

	// GetByProduct returns the touched checklist rows for a product.
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ChecklistState, error)

	// CountChecked returns how many items are currently checked.
	CountChecked(ctx context.Context, productID uuid.UUID) (int, error)
}

type checklistRepository struct {
	db *database.DB
}

// NewChecklistRepository creates a new ChecklistRepository.
func NewChecklistRepository(db *database.DB) ChecklistRepository {
	return &checklistRepository{db: db}
}

var _ ChecklistRepository = (*checklistRepository)(nil)

func (r *checklistRepository) SetChecked(ctx context.Context, productID uuid.UUID, item models.ChecklistItem, checked bool, updatedBy string) error {
	q := r.db.QuerierFrom(ctx)

	query := `
		INSERT INTO engine_checklist (product_id, item, checked, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, item)
		DO UPDATE SET checked = EXCLUDED.checked,
		              updated_by = EXCLUDED.updated_by,
		              updated_at = EXCLUDED.updated_at`

	_, err := q.Exec(ctx, query, productID, item, checked, updatedBy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set checklist item: %w", err)
	}
	return nil
}

func (r *checklistRepository) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ChecklistState, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT product_id, item, checked, updated_by, updated_at
		FROM engine_checklist
		WHERE product_id = $1
		ORDER BY item`

	rows, err := q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist: %w", err)
	}
	defer rows.Close()

	var states []*models.ChecklistState
	for rows.Next() {
		var s models.ChecklistState
		if err := rows.Scan(&s.ProductID, &s.Item, &s.Checked, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		states = append(states, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist items: %w", err)
	}
	return states, nil
}

func (r *checklistRepository) CountChecked(ctx context.Context, productID uuid.UUID) (int, error) {
	q := r.db.QuerierFrom(ctx)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM engine_checklist WHERE product_id = $1 AND checked = TRUE`,
		productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count checklist items: %w", err)
	}
	return count, nil
}
