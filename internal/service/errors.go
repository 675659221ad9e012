package service

import (
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

// ValidationError reports malformed input. Nothing was written.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// validation collects field messages and yields a *ValidationError when any
// were added.
type validation struct {
	fields []string
}

func (v *validation) check(ok bool, msg string) {
	if !ok {
		v.fields = append(v.fields, msg)
	}
}

func (v *validation) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

type AuditEntry struct {
	Caller       domain.Caller
	Action       domain.AuditAction
	ResourceType string
	ResourceID   uuid.UUID
	Changes      any
}

// authorize returns ErrForbidden unless the caller holds one of the roles.
func authorize(caller domain.Caller, allowed ...domain.Role) error {
	for _, r := range allowed {
		if caller.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
