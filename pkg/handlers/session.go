package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/models"
)

// LoginRequest for POST /api/session
type LoginRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// LoginResponse for POST /api/session
type LoginResponse struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
}

// RoleOption describes one entry on the login screen's role picker.
type RoleOption struct {
	Role  models.Role `json:"role"`
	Label string      `json:"label"`
}

// SessionHandler handles login, logout and session introspection.
type SessionHandler struct {
	sessions *auth.Service
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *auth.Service, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers the session handler's routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/session", h.Login)
	mux.HandleFunc("DELETE /api/session", h.Logout)
	mux.HandleFunc("GET /api/session", authMiddleware.RequireSession(h.Current))
	mux.HandleFunc("GET /api/roles", h.Roles)
}

// Login handles POST /api/session. The caller picks a display name and one of
// the four workflow roles; no password is involved.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	role := models.Role(req.Role)
	token, err := h.sessions.Issue(req.Name, role)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_login", "Name and a valid role are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.sessions.WriteCookie(w, r, token); err != nil {
		h.logger.Error("Failed to set session cookie", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_failed", "Failed to create session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.logger.Info("User logged in",
		zap.String("name", req.Name),
		zap.String("role", req.Role))

	response := LoginResponse{
		Token:   token,
		Session: models.Session{Name: req.Name, Role: role},
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Logout handles DELETE /api/session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearCookie(w, r); err != nil {
		h.logger.Error("Failed to clear session cookie", zap.Error(err))
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Current handles GET /api/session.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, ok := models.GetSession(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Login required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: session}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Roles handles GET /api/roles. Feeds the login screen's role picker.
func (h *SessionHandler) Roles(w http.ResponseWriter, r *http.Request) {
	options := make([]RoleOption, 0, len(models.AllRoles))
	for _, role := range models.AllRoles {
		options = append(options, RoleOption{Role: role, Label: role.String()})
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: options}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
