package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/models"
)

// Middleware provides HTTP session middleware.
type Middleware struct {
	service *Service
	logger  *zap.Logger
}

// NewMiddleware creates a new session middleware.
func NewMiddleware(service *Service, logger *zap.Logger) *Middleware {
	return &Middleware{
		service: service,
		logger:  logger,
	}
}

// RequireSession validates the request's session and puts it in the context
// for downstream handlers. Unauthenticated requests get a 401.
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := m.service.FromRequest(r)
		if err != nil {
			m.unauthorized(w, "Login required")
			return
		}
		next(w, r.WithContext(models.WithSession(r.Context(), session)))
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	}); err != nil {
		m.logger.Error("Failed to write unauthorized response", zap.Error(err))
	}
}
