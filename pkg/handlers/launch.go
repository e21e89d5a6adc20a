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

// UploadArtifactRequest for POST /api/products/{id}/artifacts
type UploadArtifactRequest struct {
	Type     string `json:"type"`
	FileName string `json:"file_name"`
}

// DeleteArtifactRequest for DELETE /api/products/{id}/artifacts
type DeleteArtifactRequest struct {
	Type string `json:"type"`
}

// SetChecklistItemRequest for PUT /api/products/{id}/checklist
type SetChecklistItemRequest struct {
	Item    string `json:"item"`
	Checked bool   `json:"checked"`
}

// ArtifactListResponse for GET /api/products/{id}/artifacts
type ArtifactListResponse struct {
	Artifacts []*models.Artifact    `json:"artifacts"`
	Required  []models.ArtifactType `json:"required"`
}

// ChecklistResponse for GET /api/products/{id}/checklist
type ChecklistResponse struct {
	Items    []*models.ChecklistState `json:"items"`
	Required []models.ChecklistItem   `json:"required"`
}

// ============================================================================
// Handler
// ============================================================================

// LaunchHandler handles launch preparation HTTP requests: the document
// artifacts and the pre-launch checklist.
type LaunchHandler struct {
	launchService services.LaunchService
	logger        *zap.Logger
}

// NewLaunchHandler creates a new launch handler.
func NewLaunchHandler(launchService services.LaunchService, logger *zap.Logger) *LaunchHandler {
	return &LaunchHandler{launchService: launchService, logger: logger}
}

// RegisterRoutes registers the launch handler's routes on the given mux.
func (h *LaunchHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/products/{id}"

	mux.HandleFunc("GET "+base+"/artifacts", authMiddleware.RequireSession(h.ListArtifacts))
	mux.HandleFunc("POST "+base+"/artifacts", authMiddleware.RequireSession(h.UploadArtifact))
	mux.HandleFunc("DELETE "+base+"/artifacts", authMiddleware.RequireSession(h.DeleteArtifact))
	mux.HandleFunc("GET "+base+"/checklist", authMiddleware.RequireSession(h.GetChecklist))
	mux.HandleFunc("PUT "+base+"/checklist", authMiddleware.RequireSession(h.SetChecklistItem))
}

// ListArtifacts handles GET /api/products/{id}/artifacts
func (h *LaunchHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	artifacts, err := h.launchService.ListArtifacts(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_artifacts_failed")
		return
	}

	response := ArtifactListResponse{
		Artifacts: artifacts,
		Required:  models.AllArtifactTypes,
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UploadArtifact handles POST /api/products/{id}/artifacts
func (h *LaunchHandler) UploadArtifact(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req UploadArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	typ := models.ArtifactType(req.Type)
	if !models.IsValidArtifactType(typ) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_artifact_type", "Unknown artifact type"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.launchService.UploadArtifact(r.Context(), productID, typ, req.FileName); err != nil {
		writeServiceError(w, h.logger, err, "upload_artifact_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// DeleteArtifact handles DELETE /api/products/{id}/artifacts
func (h *LaunchHandler) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req DeleteArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	typ := models.ArtifactType(req.Type)
	if !models.IsValidArtifactType(typ) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_artifact_type", "Unknown artifact type"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.launchService.DeleteArtifact(r.Context(), productID, typ); err != nil {
		writeServiceError(w, h.logger, err, "delete_artifact_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetChecklist handles GET /api/products/{id}/checklist
func (h *LaunchHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.launchService.GetChecklist(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_checklist_failed")
		return
	}

	response := ChecklistResponse{
		Items:    items,
		Required: models.AllChecklistItems,
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SetChecklistItem handles PUT /api/products/{id}/checklist
func (h *LaunchHandler) SetChecklistItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	var req SetChecklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	item := models.ChecklistItem(req.Item)
	if !models.IsValidChecklistItem(item) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_checklist_item", "Unknown checklist item"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.launchService.SetChecklistItem(r.Context(), productID, item, req.Checked); err != nil {
		writeServiceError(w, h.logger, err, "set_checklist_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
