// Package models contains domain types for product-engine.
package models

import "context"

// Session carries the acting user's identity through workflow operations.
// Every mutating operation reads WHO performed it from here; there is no
// global current-user state.
type Session struct {
	// Name is the display name entered at login.
	Name string `json:"name"`

	// Role is the workflow role the user logged in as.
	Role Role `json:"role"`
}

// sessionKey is the context key for storing session information.
type sessionKey struct{}

// WithSession returns a new context with session information attached.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession retrieves session information from the context.
// Returns the session and true if present, otherwise a zero value and false.
func GetSession(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// MustGetSession retrieves session information from the context.
// Panics if no session is present. Use only after middleware validation.
func MustGetSession(ctx context.Context) Session {
	s, ok := GetSession(ctx)
	if !ok {
		panic("session required but not present in context")
	}
	return s
}
