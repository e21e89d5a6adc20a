package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
)

// ProductRepository provides data access for products. Approvals, status
// history and return requests are owned by the product row and stored as
// JSONB alongside the field data.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *models.Product) error

	// GetByID returns a product, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// List returns products ordered by last update (newest first),
	// optionally filtered by status.
	List(ctx context.Context, status models.ProductStatus) ([]*models.Product, error)

	// Update persists the product's current state.
	Update(ctx context.Context, product *models.Product) error

	// Delete removes a product. Audit and notification records referencing
	// it are left in place.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns dashboard counts keyed by status.
	CountByStatus(ctx context.Context) (map[models.ProductStatus]int, error)
}

type productRepository struct {
	db *database.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

var _ ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	q := r.db.QuerierFrom(ctx)

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = models.StatusDraft
	}

	data, approvals, history, requests, err := marshalProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO engine_products (
			id, status, data, approvals, status_history, return_requests, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = q.Exec(ctx, query,
		product.ID, product.Status, data, approvals, history, requests,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT id, status, data, approvals, status_history, return_requests, created_at, updated_at
		FROM engine_products
		WHERE id = $1`

	product, err := scanProduct(q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context, status models.ProductStatus) ([]*models.Product, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT id, status, data, approvals, status_history, return_requests, created_at, updated_at
		FROM engine_products`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	q := r.db.QuerierFrom(ctx)

	product.UpdatedAt = time.Now()

	data, approvals, history, requests, err := marshalProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE engine_products
		SET status = $2, data = $3, approvals = $4, status_history = $5,
		    return_requests = $6, updated_at = $7
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		product.ID, product.Status, data, approvals, history, requests, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	tag, err := q.Exec(ctx, `DELETE FROM engine_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) CountByStatus(ctx context.Context) (map[models.ProductStatus]int, error) {
	q := r.db.QuerierFrom(ctx)

	rows, err := q.Query(ctx, `SELECT status, COUNT(*) FROM engine_products GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ProductStatus]int)
	for rows.Next() {
		var status models.ProductStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

func marshalProductJSON(p *models.Product) (data, approvals, history, requests []byte, err error) {
	if data, err = json.Marshal(p.Data); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal product data: %w", err)
	}
	if p.Approvals != nil {
		if approvals, err = json.Marshal(p.Approvals); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal approvals: %w", err)
		}
	}
	if history, err = json.Marshal(p.StatusHistory); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal status history: %w", err)
	}
	if requests, err = json.Marshal(p.ReturnRequests); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal return requests: %w", err)
	}
	return data, approvals, history, requests, nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var data, approvals, history, requests []byte

	err := row.Scan(&p.ID, &p.Status, &data, &approvals, &history, &requests, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &p.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product data: %w", err)
		}
	}
	if len(approvals) > 0 && string(approvals) != "null" {
		if err := json.Unmarshal(approvals, &p.Approvals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal approvals: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.StatusHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
		}
	}
	if len(requests) > 0 && string(requests) != "null" {
		if err := json.Unmarshal(requests, &p.ReturnRequests); err != nil {
			return nil, fmt.Errorf("failed to unmarshal return requests: %w", err)
		}
	}
	return &p, nil
}
