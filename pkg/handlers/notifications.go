package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/services"
)

// NotificationListResponse for GET /api/notifications
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// NotificationsHandler handles the notification center's HTTP requests.
type NotificationsHandler struct {
	notificationService services.NotificationService
	logger              *zap.Logger
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(notificationService services.NotificationService, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// RegisterRoutes registers the notifications handler's routes on the given mux.
func (h *NotificationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/notifications", authMiddleware.RequireSession(h.List))
	mux.HandleFunc("POST /api/notifications/{nid}/read", authMiddleware.RequireSession(h.MarkRead))
	mux.HandleFunc("POST /api/notifications/read-all", authMiddleware.RequireSession(h.MarkAllRead))
}

// List handles GET /api/notifications. Supports ?limit=.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "Invalid limit parameter"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	notifications, err := h.notificationService.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_notifications_failed")
		return
	}
	unread, err := h.notificationService.CountUnread(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "count_unread_failed")
		return
	}

	response := NotificationListResponse{
		Notifications: notifications,
		Unread:        unread,
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkRead handles POST /api/notifications/{nid}/read
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := ParseNotificationID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID); err != nil {
		writeServiceError(w, h.logger, err, "mark_read_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkAllRead handles POST /api/notifications/read-all
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkAllRead(r.Context()); err != nil {
		writeServiceError(w, h.logger, err, "mark_all_read_failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
