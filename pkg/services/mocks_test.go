package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// fakeTx satisfies pgx.Tx so unit tests can pre-seed a transaction scope and
// keep the pool out of the picture. Repositories are mocked, so none of the
// query methods are ever reached.
type fakeTx struct{}

func (fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(ctx context.Context) error          { return nil }
func (fakeTx) Rollback(ctx context.Context) error        { return nil }
func (fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (fakeTx) Conn() *pgx.Conn                                               { return nil }

// sessionCtx builds a context carrying both a session and a pre-seeded
// transaction scope, the shape every service operation expects.
func sessionCtx(name string, role models.Role) context.Context {
	ctx := models.WithSession(context.Background(), models.Session{Name: name, Role: role})
	return database.WithTxScope(ctx, fakeTx{})
}

// ============================================================================
// Repository mocks
// ============================================================================

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product

	updateErr error
}

func newMockProductRepo(products ...*models.Product) *mockProductRepo {
	repo := &mockProductRepo{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		repo.products[p.ID] = p
	}
	return repo
}

var _ repositories.ProductRepository = (*mockProductRepo)(nil)

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) List(ctx context.Context, status models.ProductStatus) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Product
	for _, p := range m.products {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.products[product.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) CountByStatus(ctx context.Context) (map[models.ProductStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ProductStatus]int)
	for _, p := range m.products {
		counts[p.Status]++
	}
	return counts, nil
}

type mockArtifactRepo struct {
	artifacts map[models.ArtifactType]*models.Artifact
	upserts   []*models.Artifact
}

func newMockArtifactRepo() *mockArtifactRepo {
	return &mockArtifactRepo{artifacts: make(map[models.ArtifactType]*models.Artifact)}
}

var _ repositories.ArtifactRepository = (*mockArtifactRepo)(nil)

func (m *mockArtifactRepo) Upsert(ctx context.Context, artifact *models.Artifact) error {
	m.artifacts[artifact.Type] = artifact
	m.upserts = append(m.upserts, artifact)
	return nil
}

func (m *mockArtifactRepo) Delete(ctx context.Context, productID uuid.UUID, artifactType models.ArtifactType) error {
	if _, ok := m.artifacts[artifactType]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.artifacts, artifactType)
	return nil
}

func (m *mockArtifactRepo) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Artifact, error) {
	var out []*models.Artifact
	for _, a := range m.artifacts {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockArtifactRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	return len(m.artifacts), nil
}

type mockChecklistRepo struct {
	checked map[models.ChecklistItem]bool
}

func newMockChecklistRepo() *mockChecklistRepo {
	return &mockChecklistRepo{checked: make(map[models.ChecklistItem]bool)}
}

var _ repositories.ChecklistRepository = (*mockChecklistRepo)(nil)

func (m *mockChecklistRepo) SetChecked(ctx context.Context, productID uuid.UUID, item models.ChecklistItem, checked bool, updatedBy string) error {
	m.checked[item] = checked
	return nil
}

func (m *mockChecklistRepo) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ChecklistState, error) {
	var out []*models.ChecklistState
	for item, checked := range m.checked {
		out = append(out, &models.ChecklistState{ProductID: productID, Item: item, Checked: checked})
	}
	return out, nil
}

func (m *mockChecklistRepo) CountChecked(ctx context.Context, productID uuid.UUID) (int, error) {
	n := 0
	for _, checked := range m.checked {
		if checked {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// Service mocks
// ============================================================================

type auditCall struct {
	Action      string
	ProductID   uuid.UUID
	ProductName string
	Details     map[string]any
}

type mockAudit struct {
	calls []auditCall
}

var _ AuditService = (*mockAudit)(nil)

func (m *mockAudit) Log(ctx context.Context, action string, productID uuid.UUID, productName string, details map[string]any) error {
	m.calls = append(m.calls, auditCall{Action: action, ProductID: productID, ProductName: productName, Details: details})
	return nil
}

func (m *mockAudit) GetByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	return nil, nil
}

func (m *mockAudit) GetRecent(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return nil, nil
}

func (m *mockAudit) actions() []string {
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Action)
	}
	return out
}

type notifyCall struct {
	Type    models.NotificationType
	Title   string
	Message string
}

type mockNotifications struct {
	calls []notifyCall
}

var _ NotificationService = (*mockNotifications)(nil)

func (m *mockNotifications) Notify(ctx context.Context, typ models.NotificationType, title, message string, productID uuid.UUID, productName string) error {
	m.calls = append(m.calls, notifyCall{Type: typ, Title: title, Message: message})
	return nil
}

func (m *mockNotifications) List(ctx context.Context, limit int) ([]*models.Notification, error) {
	return nil, nil
}

func (m *mockNotifications) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockNotifications) MarkAllRead(ctx context.Context) error { return nil }

func (m *mockNotifications) CountUnread(ctx context.Context) (int, error) { return 0, nil }

func (m *mockNotifications) types() []models.NotificationType {
	out := make([]models.NotificationType, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Type)
	}
	return out
}

type recordingNotifier struct {
	mu      sync.Mutex
	changed []uuid.UUID
}

var _ ChangeNotifier = (*recordingNotifier)(nil)

func (r *recordingNotifier) ProductChanged(ctx context.Context, productID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, productID)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changed)
}

type transitionCall struct {
	From, To models.ProductStatus
}

type decisionCall struct {
	Role     models.Role
	Approved bool
}

type mockMetrics struct {
	transitions []transitionCall
	decisions   []decisionCall
}

var _ WorkflowMetrics = (*mockMetrics)(nil)

func (m *mockMetrics) StatusTransition(from, to models.ProductStatus) {
	m.transitions = append(m.transitions, transitionCall{From: from, To: to})
}

func (m *mockMetrics) ApprovalDecision(role models.Role, approved bool) {
	m.decisions = append(m.decisions, decisionCall{Role: role, Approved: approved})
}
