package service

import (
	"errors"
	"strings"
)

var (
	// ErrForbidden means the caller's API key lacks the needed permission.
	ErrForbidden = errors.New("api key does not permit this operation")
	// ErrKeyExpired means the API key exists but is past its expiry.
	ErrKeyExpired = errors.New("api key expired")
	// ErrKeyInactive means the API key has been revoked.
	ErrKeyInactive = errors.New("api key revoked")
	// ErrRateLimited means the key exceeded its per-minute request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError carries the full per-field error list so the handler can
// return it alongside the summary message.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// SchemaError reports structural problems in a dataset schema definition.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return "invalid schema: " + strings.Join(e.Errors, "; ")
}
