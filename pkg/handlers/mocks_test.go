package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/services"
)

// Function-field mocks: each test sets only the calls it expects.

type mockWorkflowService struct {
	changeStatusFn   func(ctx context.Context, productID uuid.UUID, newStatus models.ProductStatus, comment string) (*models.Product, error)
	sendFn           func(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	approveFn        func(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error)
	rejectFn         func(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error)
	requestReturnFn  func(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error)
	returnFn         func(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	approvalButtonFn func(ctx context.Context, productID uuid.UUID) (models.ApprovalButton, error)
}

var _ services.WorkflowService = (*mockWorkflowService)(nil)

func (m *mockWorkflowService) ChangeStatus(ctx context.Context, productID uuid.UUID, newStatus models.ProductStatus, comment string) (*models.Product, error) {
	return m.changeStatusFn(ctx, productID, newStatus, comment)
}

func (m *mockWorkflowService) SendForApproval(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return m.sendFn(ctx, productID)
}

func (m *mockWorkflowService) ApproveByRole(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error) {
	return m.approveFn(ctx, productID, comment)
}

func (m *mockWorkflowService) RejectByRole(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error) {
	return m.rejectFn(ctx, productID, comment)
}

func (m *mockWorkflowService) RequestReturnToApproval(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error) {
	return m.requestReturnFn(ctx, productID, comment)
}

func (m *mockWorkflowService) ReturnToApproval(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return m.returnFn(ctx, productID)
}

func (m *mockWorkflowService) ApprovalButton(ctx context.Context, productID uuid.UUID) (models.ApprovalButton, error) {
	return m.approvalButtonFn(ctx, productID)
}

type mockProductService struct {
	createFn       func(ctx context.Context) (*models.Product, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	listFn         func(ctx context.Context, status models.ProductStatus, search string) ([]*models.Product, error)
	countFn        func(ctx context.Context) (map[models.ProductStatus]int, error)
	updateFieldsFn func(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Product, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

var _ services.ProductService = (*mockProductService)(nil)

func (m *mockProductService) Create(ctx context.Context) (*models.Product, error) {
	return m.createFn(ctx)
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return m.getFn(ctx, id)
}

func (m *mockProductService) List(ctx context.Context, status models.ProductStatus, search string) ([]*models.Product, error) {
	return m.listFn(ctx, status, search)
}

func (m *mockProductService) CountByStatus(ctx context.Context) (map[models.ProductStatus]int, error) {
	return m.countFn(ctx)
}

func (m *mockProductService) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Product, error) {
	return m.updateFieldsFn(ctx, id, fields)
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

type mockAutosaveService struct {
	bufferFn func(ctx context.Context, productID uuid.UUID, fields map[string]any) error
}

var _ services.AutosaveService = (*mockAutosaveService)(nil)

func (m *mockAutosaveService) Buffer(ctx context.Context, productID uuid.UUID, fields map[string]any) error {
	return m.bufferFn(ctx, productID, fields)
}

func (m *mockAutosaveService) Flush(productID uuid.UUID) {}

func (m *mockAutosaveService) Close() {}
