package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/access"
	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ProductListResponse for GET /api/products
type ProductListResponse struct {
	Products []*models.Product `json:"products"`
	Total    int               `json:"total"`
}

// UpdateFieldsRequest for PATCH /api/products/{id}
type UpdateFieldsRequest struct {
	Fields map[string]any `json:"fields"`
}

// StatusCountsResponse for GET /api/products/counts
type StatusCountsResponse struct {
	Counts map[models.ProductStatus]int `json:"counts"`
}

// ============================================================================
// Handler
// ============================================================================

// ProductsHandler handles product CRUD and field editing HTTP requests.
type ProductsHandler struct {
	productService  services.ProductService
	autosaveService services.AutosaveService
	policy          *access.Policy
	logger          *zap.Logger
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(
	productService services.ProductService,
	autosaveService services.AutosaveService,
	policy *access.Policy,
	logger *zap.Logger,
) *ProductsHandler {
	return &ProductsHandler{
		productService:  productService,
		autosaveService: autosaveService,
		policy:          policy,
		logger:          logger,
	}
}

// RegisterRoutes registers the products handler's routes on the given mux.
func (h *ProductsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/products", authMiddleware.RequireSession(h.List))
	mux.HandleFunc("POST /api/products", authMiddleware.RequireSession(h.Create))
	mux.HandleFunc("GET /api/products/counts", authMiddleware.RequireSession(h.Counts))
	mux.HandleFunc("GET /api/products/{id}", authMiddleware.RequireSession(h.Get))
	mux.HandleFunc("PATCH /api/products/{id}", authMiddleware.RequireSession(h.UpdateFields))
	mux.HandleFunc("POST /api/products/{id}/autosave", authMiddleware.RequireSession(h.Autosave))
	mux.HandleFunc("DELETE /api/products/{id}", authMiddleware.RequireSession(h.Delete))
	mux.HandleFunc("GET /api/control-states", authMiddleware.RequireSession(h.ControlStates))
}

// List handles GET /api/products. Supports ?status= and ?search= filters.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.ProductStatus(r.URL.Query().Get("status"))
	search := r.URL.Query().Get("search")

	products, err := h.productService.List(r.Context(), status, search)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_products_failed")
		return
	}

	response := ProductListResponse{
		Products: products,
		Total:    len(products),
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/products. New products always start as drafts.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.Create(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "create_product_failed")
		return
	}
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/products/{id}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_product_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateFields handles PATCH /api/products/{id}. Each field is checked
// against the ownership table before it is written.
func (h *ProductsHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if len(req.Fields) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "No fields to update"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	product, err := h.productService.UpdateFields(r.Context(), productID, req.Fields)
	if err != nil {
		writeServiceError(w, h.logger, err, "update_product_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: product}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Autosave handles POST /api/products/{id}/autosave. Edits are buffered and
// written after a quiet period instead of immediately; the response only
// acknowledges that the edit was accepted into the buffer.
func (h *ProductsHandler) Autosave(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.autosaveService.Buffer(r.Context(), productID, req.Fields); err != nil {
		writeServiceError(w, h.logger, err, "autosave_failed")
		return
	}
	if err := WriteJSON(w, http.StatusAccepted, ApiResponse{Success: true, Message: "Buffered"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/products/{id}
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), productID); err != nil {
		writeServiceError(w, h.logger, err, "delete_product_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Product deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Counts handles GET /api/products/counts. Feeds the dashboard tiles.
func (h *ProductsHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.productService.CountByStatus(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "count_products_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: StatusCountsResponse{Counts: counts}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ControlStates handles GET /api/control-states. Returns, for the session's
// role, the disabled flag and ownership message for every declared field.
func (h *ProductsHandler) ControlStates(w http.ResponseWriter, r *http.Request) {
	session := models.MustGetSession(r.Context())
	states := h.policy.ControlStates(session.Role)
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: states}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
