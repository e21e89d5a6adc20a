package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/models"
)

func workflowRequest(t *testing.T, method string, productID uuid.UUID, body string) *http.Request {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, "/api/products/"+productID.String()+"/x", nil)
	} else {
		r = httptest.NewRequest(method, "/api/products/"+productID.String()+"/x", strings.NewReader(body))
	}
	r.SetPathValue("id", productID.String())
	session := models.Session{Name: "Анна", Role: models.RoleProductOwner}
	return r.WithContext(models.WithSession(r.Context(), session))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestApproveHandler(t *testing.T) {
	productID := uuid.New()
	service := &mockWorkflowService{
		approveFn: func(ctx context.Context, id uuid.UUID, comment string) (*models.Product, error) {
			assert.Equal(t, productID, id)
			assert.Equal(t, "проверено", comment)
			return &models.Product{ID: id, Status: models.StatusApproval}, nil
		},
	}
	h := NewWorkflowHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	h.Approve(w, workflowRequest(t, http.MethodPost, productID, `{"comment":"проверено"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body["success"])
}

func TestApproveHandlerEmptyBody(t *testing.T) {
	service := &mockWorkflowService{
		approveFn: func(ctx context.Context, id uuid.UUID, comment string) (*models.Product, error) {
			assert.Empty(t, comment)
			return &models.Product{ID: id}, nil
		},
	}
	h := NewWorkflowHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	h.Approve(w, workflowRequest(t, http.MethodPost, uuid.New(), ""))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApproveHandlerInvalidProductID(t *testing.T) {
	h := NewWorkflowHandler(&mockWorkflowService{}, zap.NewNop())

	r := httptest.NewRequest(http.MethodPost, "/api/products/abc/approve", nil)
	r.SetPathValue("id", "abc")

	w := httptest.NewRecorder()
	h.Approve(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectHandlerMissingReason(t *testing.T) {
	service := &mockWorkflowService{
		rejectFn: func(ctx context.Context, id uuid.UUID, comment string) (*models.Product, error) {
			return nil, apperrors.ErrMissingReason
		},
	}
	h := NewWorkflowHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	h.Reject(w, workflowRequest(t, http.MethodPost, uuid.New(), `{"comment":""}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "missing_reason", body["error"])
}

func TestChangeStatusHandlerConflictMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"illegal transition", apperrors.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"locked product", apperrors.ErrProductLocked, http.StatusConflict, "product_locked"},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockWorkflowService{
				changeStatusFn: func(ctx context.Context, id uuid.UUID, s models.ProductStatus, c string) (*models.Product, error) {
					return nil, tt.err
				},
			}
			h := NewWorkflowHandler(service, zap.NewNop())

			w := httptest.NewRecorder()
			h.ChangeStatus(w, workflowRequest(t, http.MethodPost, uuid.New(), `{"status":"approval"}`))

			assert.Equal(t, tt.status, w.Code)
			body := decodeEnvelope(t, w)
			assert.Equal(t, tt.code, body["error"])
		})
	}
}

func TestSendForApprovalHandlerValidationError(t *testing.T) {
	service := &mockWorkflowService{
		sendFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return nil, &apperrors.ValidationError{
				Role:   models.RoleUnderwriter.String(),
				Fields: []string{"currencies"},
			}
		},
	}
	h := NewWorkflowHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	h.SendForApproval(w, workflowRequest(t, http.MethodPost, uuid.New(), ""))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "missing_required_fields", body["error"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.RoleUnderwriter.String(), data["role"])
	assert.Equal(t, []any{"currencies"}, data["fields"])
}

func TestReturnToApprovalHandlerForbiddenRole(t *testing.T) {
	service := &mockWorkflowService{
		returnFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return nil, apperrors.ErrInvalidRole
		},
	}
	h := NewWorkflowHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	h.ReturnToApproval(w, workflowRequest(t, http.MethodPost, uuid.New(), ""))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApprovalButtonHandler(t *testing.T) {
	service := &mockWorkflowService{
		approvalButtonFn: func(ctx context.Context, id uuid.UUID) (models.ApprovalButton, error) {
			return models.ApprovalButton{Label: "Согласовать", Enabled: true}, nil
		},
	}
	h := NewWorkflowHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	h.ApprovalButton(w, workflowRequest(t, http.MethodGet, uuid.New(), ""))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Согласовать", data["label"])
	assert.Equal(t, true, data["enabled"])
}
