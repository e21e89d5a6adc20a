package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/services"
)

// ReadinessHandler serves the launch readiness score.
type ReadinessHandler struct {
	readinessService services.ReadinessService
	logger           *zap.Logger
}

// NewReadinessHandler creates a new readiness handler.
func NewReadinessHandler(readinessService services.ReadinessService, logger *zap.Logger) *ReadinessHandler {
	return &ReadinessHandler{
		readinessService: readinessService,
		logger:           logger,
	}
}

// RegisterRoutes registers the readiness handler's routes on the given mux.
func (h *ReadinessHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/products/{id}/readiness", authMiddleware.RequireSession(h.Get))
}

// Get handles GET /api/products/{id}/readiness
func (h *ReadinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	snapshot, err := h.readinessService.Compute(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "readiness_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: snapshot}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
