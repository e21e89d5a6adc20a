package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/apperrors"
)

// writeServiceError maps a domain error to an HTTP response. Validation and
// field-access errors carry structured detail the UI renders inline; the rest
// map to plain error codes. Unknown errors become a 500 with fallbackCode.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallbackCode string) {
	var status int
	var code string
	var body any

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrNoSession):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperrors.ErrInvalidRole):
		status, code = http.StatusForbidden, "invalid_role"
	case errors.Is(err, apperrors.ErrProductLocked):
		status, code = http.StatusConflict, "product_locked"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, apperrors.ErrMissingReason):
		status, code = http.StatusBadRequest, "missing_reason"
	default:
		if verr, ok := apperrors.IsValidation(err); ok {
			status = http.StatusUnprocessableEntity
			body = ApiResponse{
				Success: false,
				Error:   "missing_required_fields",
				Message: verr.Error(),
				Data:    map[string]any{"role": verr.Role, "fields": verr.Fields},
			}
		} else if ferr, ok := apperrors.IsFieldAccess(err); ok {
			status = http.StatusForbidden
			body = ApiResponse{
				Success: false,
				Error:   "field_not_editable",
				Message: ferr.Error(),
				Data:    map[string]any{"field": ferr.Field, "owner": ferr.Owner},
			}
		} else {
			status, code = http.StatusInternalServerError, fallbackCode
			logger.Error("Request failed", zap.Error(err))
		}
	}

	if body != nil {
		if err := WriteJSON(w, status, body); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
