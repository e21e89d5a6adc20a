package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
)

// AuditRepository provides data access for the append-only audit log.
// There is no update or delete: entries are immutable facts.
type AuditRepository interface {
	// Create inserts a new audit entry.
	Create(ctx context.Context, entry *models.AuditEntry) error

	// GetByProduct returns entries for a product, newest first.
	GetByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*models.AuditEntry, error)

	// GetRecent returns the most recent entries across all products.
	GetRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	q := r.db.QuerierFrom(ctx)

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var detailsJSON []byte
	var err error
	if len(entry.Details) > 0 {
		detailsJSON, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	query := `
		INSERT INTO engine_audit_log (
			id, action, product_id, product_name, user_name, role, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = q.Exec(ctx, query,
		entry.ID, entry.Action, entry.ProductID, entry.ProductName,
		entry.User, entry.Role, detailsJSON, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) GetByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, action, product_id, product_name, user_name, role, details, created_at
		FROM engine_audit_log
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	return r.query(ctx, query, productID, limit)
}

func (r *auditRepository) GetRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, action, product_id, product_name, user_name, role, details, created_at
		FROM engine_audit_log
		ORDER BY created_at DESC
		LIMIT $1`
	return r.query(ctx, query, limit)
}

func (r *auditRepository) query(ctx context.Context, query string, args ...any) ([]*models.AuditEntry, error) {
	q := r.db.QuerierFrom(ctx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}
	return entries, nil
}

func scanAuditEntry(row pgx.Row) (*models.AuditEntry, error) {
	var entry models.AuditEntry
	var detailsJSON []byte

	err := row.Scan(&entry.ID, &entry.Action, &entry.ProductID, &entry.ProductName,
		&entry.User, &entry.Role, &detailsJSON, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit entry: %w", err)
	}

	if len(detailsJSON) > 0 && string(detailsJSON) != "null" {
		if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
		}
	}
	return &entry, nil
}
