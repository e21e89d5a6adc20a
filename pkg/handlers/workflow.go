package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ChangeStatusRequest for POST /api/products/{id}/status
type ChangeStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// DecisionRequest carries the optional (approve) or mandatory (reject,
// return request) comment.
type DecisionRequest struct {
	Comment string `json:"comment,omitempty"`
}

// ============================================================================
// Handler
// ============================================================================

// WorkflowHandler handles approval workflow HTTP requests.
type WorkflowHandler struct {
	workflowService services.WorkflowService
	logger          *zap.Logger
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(workflowService services.WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
		logger:          logger,
	}
}

// RegisterRoutes registers the workflow handler's routes on the given mux.
func (h *WorkflowHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/products/{id}"

	mux.HandleFunc("POST "+base+"/status", authMiddleware.RequireSession(h.ChangeStatus))
	mux.HandleFunc("POST "+base+"/send-for-approval", authMiddleware.RequireSession(h.SendForApproval))
	mux.HandleFunc("POST "+base+"/approve", authMiddleware.RequireSession(h.Approve))
	mux.HandleFunc("POST "+base+"/reject", authMiddleware.RequireSession(h.Reject))
	mux.HandleFunc("POST "+base+"/return-request", authMiddleware.RequireSession(h.RequestReturn))
	mux.HandleFunc("POST "+base+"/return-to-approval", authMiddleware.RequireSession(h.ReturnToApproval))
	mux.HandleFunc("GET "+base+"/approval-button", authMiddleware.RequireSession(h.ApprovalButton))
}

// ChangeStatus handles POST /api/products/{id}/status
func (h *WorkflowHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	product, err := h.workflowService.ChangeStatus(r.Context(), productID, models.ProductStatus(req.Status), req.Comment)
	if err != nil {
		writeServiceError(w, h.logger, err, "change_status_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SendForApproval handles POST /api/products/{id}/send-for-approval
func (h *WorkflowHandler) SendForApproval(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	product, err := h.workflowService.SendForApproval(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "send_for_approval_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Approve handles POST /api/products/{id}/approve
func (h *WorkflowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	product, err := h.workflowService.ApproveByRole(r.Context(), productID, req.Comment)
	if err != nil {
		writeServiceError(w, h.logger, err, "approve_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Reject handles POST /api/products/{id}/reject
func (h *WorkflowHandler) Reject(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	product, err := h.workflowService.RejectByRole(r.Context(), productID, req.Comment)
	if err != nil {
		writeServiceError(w, h.logger, err, "reject_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RequestReturn handles POST /api/products/{id}/return-request
func (h *WorkflowHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	product, err := h.workflowService.RequestReturnToApproval(r.Context(), productID, req.Comment)
	if err != nil {
		writeServiceError(w, h.logger, err, "return_request_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ReturnToApproval handles POST /api/products/{id}/return-to-approval
func (h *WorkflowHandler) ReturnToApproval(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	product, err := h.workflowService.ReturnToApproval(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "return_to_approval_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ApprovalButton handles GET /api/products/{id}/approval-button. Returns the
// label, enabled flag and action the UI should render for the session's role.
func (h *WorkflowHandler) ApprovalButton(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	button, err := h.workflowService.ApprovalButton(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "approval_button_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: button}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// decodeDecision reads the optional comment body. An empty body is fine;
// whether a comment is mandatory is the service's call.
func (h *WorkflowHandler) decodeDecision(w http.ResponseWriter, r *http.Request) (DecisionRequest, bool) {
	var req DecisionRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return req, false
	}
	return req, true
}
