package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrDuplicate indicates an entity that already exists (e.g. an import
// colliding with an existing subscription name).
type ErrDuplicate struct {
	Resource string
	Key      string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Resource, e.Key)
}

// ErrExternalService indicates a failure in an upstream service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrAPIStatus carries a non-2xx upstream response. Status decides whether
// the call is retried: 5xx retries, 4xx fails immediately.
type ErrAPIStatus struct {
	Status int
	Body   string
}

func (e *ErrAPIStatus) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the status class permits a retry.
func (e *ErrAPIStatus) Retryable() bool {
	return e.Status >= 500
}

// ErrCircuitOpen indicates the circuit breaker refused the call.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a resource already exists (e.g. re-registration).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}
