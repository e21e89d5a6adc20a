package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/debounce"
	"github.com/fisworks/product-engine/pkg/models"
)

// AutosaveDelay is the quiet period before buffered draft edits are
// persisted. Matches the form autosave interval.
const AutosaveDelay = 2 * time.Second

// AutosaveService buffers rapid draft-field edits per product and flushes
// them through ProductService after a quiet period. Authorization happens
// at buffer time so a foreign-field edit fails immediately, not at flush.
type AutosaveService interface {
	// Buffer merges field edits into the product's pending patch and
	// (re)arms the flush timer.
	Buffer(ctx context.Context, productID uuid.UUID, fields map[string]any) error

	// Flush persists the pending patch for one product immediately.
	Flush(productID uuid.UUID)

	// Close flushes every pending patch and stops the timers.
	Close()
}

type pendingPatch struct {
	fields  map[string]any
	session models.Session
}

type autosaveService struct {
	products  ProductService
	policy    fieldAuthorizer
	debouncer *debounce.Debouncer
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingPatch
}

// fieldAuthorizer is the slice of the access policy autosave needs.
type fieldAuthorizer interface {
	CanEditField(role models.Role, name string) (bool, models.Role)
}

// NewAutosaveService creates an AutosaveService with the given quiet period.
// Pass AutosaveDelay outside of tests.
func NewAutosaveService(products ProductService, policy fieldAuthorizer, delay time.Duration, logger *zap.Logger) AutosaveService {
	return &autosaveService{
		products:  products,
		policy:    policy,
		debouncer: debounce.New(delay),
		logger:    logger.Named("autosave"),
		pending:   make(map[uuid.UUID]*pendingPatch),
	}
}

var _ AutosaveService = (*autosaveService)(nil)

func (s *autosaveService) Buffer(ctx context.Context, productID uuid.UUID, fields map[string]any) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}

	for name := range fields {
		if allowed, owner := s.policy.CanEditField(session.Role, name); !allowed {
			return &apperrors.FieldAccessError{Field: name, Owner: owner.String()}
		}
	}

	s.mu.Lock()
	patch, ok := s.pending[productID]
	if !ok {
		patch = &pendingPatch{fields: make(map[string]any)}
		s.pending[productID] = patch
	}
	for name, value := range fields {
		patch.fields[name] = value
	}
	// The session captured last wins; one browser session edits at a time.
	patch.session = session
	s.mu.Unlock()

	s.debouncer.Trigger(productID.String(), func() {
		s.Flush(productID)
	})
	return nil
}

func (s *autosaveService) Flush(productID uuid.UUID) {
	s.debouncer.Cancel(productID.String())

	s.mu.Lock()
	patch, ok := s.pending[productID]
	delete(s.pending, productID)
	s.mu.Unlock()

	if !ok || len(patch.fields) == 0 {
		return
	}

	ctx := models.WithSession(context.Background(), patch.session)
	if _, err := s.products.UpdateFields(ctx, productID, patch.fields); err != nil {
		s.logger.Error("autosave flush failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

func (s *autosaveService) Close() {
	s.debouncer.Close()

	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Flush(id)
	}
}
