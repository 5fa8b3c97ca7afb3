package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by an UpstreamError when the upstream answered 404.
var ErrNotFound = errors.New("not found")

// ValidationError reports a request parameter that does not match its contract.
type ValidationError struct {
	Field string
	Rule  string // uuid|required
}

func (e *ValidationError) Error() string {
	if e.Rule == "required" {
		return fmt.Sprintf("Required: %s", e.Field)
	}
	return fmt.Sprintf("Invalid %s: %s", e.Rule, e.Field)
}

// UpstreamError is a failed call to the guide or restaurant service.
// Status is the upstream HTTP status, or 0 when no response arrived.
type UpstreamError struct {
	Service string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
