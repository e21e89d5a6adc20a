package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrProductLocked     = errors.New("product has been sent to the regulator and is locked")
	ErrInvalidRole       = errors.New("invalid role")
	ErrNoSession         = errors.New("no active session")
)

// ValidationError reports required fields that are missing before a product
// can be sent for approval. Fields are scoped to the role performing the send;
// one role is never blocked by another role's incomplete fields.
type ValidationError struct {
	Role   string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields for %s: %s", e.Role, strings.Join(e.Fields, ", "))
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// FieldAccessError is returned when a role tries to edit a field owned by
// another role. Message names the owning role, matching what the form layer
// shows on the disabled control.
type FieldAccessError struct {
	Field string
	Owner string
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("field %q: это поле заполняет %s", e.Field, e.Owner)
}

// IsFieldAccess reports whether err is a FieldAccessError and returns it.
func IsFieldAccess(err error) (*FieldAccessError, bool) {
	var fe *FieldAccessError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
