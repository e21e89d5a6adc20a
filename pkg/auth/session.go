// Package auth issues and validates login sessions. A session is a signed
// statement of "display name + workflow role" chosen at the login screen;
// there is no password and no external identity provider. Real
// authentication is out of scope, the workflow only needs a trusted role.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/models"
)

const tokenKey = "token"

// Claims are the session token's payload.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs session tokens and moves them through a browser cookie.
// API clients can send the same token as a bearer header instead.
type Service struct {
	secret     []byte
	ttl        time.Duration
	store      *sessions.CookieStore
	cookieName string
}

// NewService creates a session service with the given signing secret.
func NewService(secret string, ttl time.Duration, cookieName string) *Service {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Service{
		secret:     []byte(secret),
		ttl:        ttl,
		store:      store,
		cookieName: cookieName,
	}
}

// Issue signs a session token for the given name and role.
func (s *Service) Issue(name string, role models.Role) (string, error) {
	if name == "" || !models.IsValidRole(role) {
		return "", apperrors.ErrInvalidRole
	}

	now := time.Now()
	claims := Claims{
		Name: name,
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Parse validates a session token and returns the session it carries.
func (s *Service) Parse(tokenString string) (models.Session, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return models.Session{}, errors.New("invalid session token")
	}

	role := models.Role(claims.Role)
	if claims.Name == "" || !models.IsValidRole(role) {
		return models.Session{}, apperrors.ErrInvalidRole
	}
	return models.Session{Name: claims.Name, Role: role}, nil
}

// WriteCookie stores the token in the session cookie.
func (s *Service) WriteCookie(w http.ResponseWriter, r *http.Request, token string) error {
	session, _ := s.store.Get(r, s.cookieName)
	session.Values[tokenKey] = token
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session cookie: %w", err)
	}
	return nil
}

// ClearCookie expires the session cookie.
func (s *Service) ClearCookie(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, s.cookieName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session cookie: %w", err)
	}
	return nil
}

// FromRequest extracts and validates the session from a request, checking
// the Authorization header first and the cookie second.
func (s *Service) FromRequest(r *http.Request) (models.Session, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return models.Session{}, apperrors.ErrNoSession
		}
		return s.Parse(token)
	}

	session, err := s.store.Get(r, s.cookieName)
	if err != nil {
		return models.Session{}, apperrors.ErrNoSession
	}
	token, ok := session.Values[tokenKey].(string)
	if !ok || token == "" {
		return models.Session{}, apperrors.ErrNoSession
	}
	return s.Parse(token)
}
