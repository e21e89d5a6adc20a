package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/services"
)

// AuditListResponse for the audit endpoints.
type AuditListResponse struct {
	Entries []*models.AuditEntry `json:"entries"`
	Total   int                  `json:"total"`
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	auditService services.AuditService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService services.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, logger: logger}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/audit", authMiddleware.RequireSession(h.Recent))
	mux.HandleFunc("GET /api/products/{id}/audit", authMiddleware.RequireSession(h.ByProduct))
}

// Recent handles GET /api/audit. Entries for deleted products are included;
// the trail outlives the product.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.auditService.GetRecent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_audit_failed")
		return
	}
	response := AuditListResponse{Entries: entries, Total: len(entries)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ByProduct handles GET /api/products/{id}/audit
func (h *AuditHandler) ByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.auditService.GetByProduct(r.Context(), productID, limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_audit_failed")
		return
	}
	response := AuditListResponse{Entries: entries, Total: len(entries)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "Invalid limit parameter"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return limit, true
}
