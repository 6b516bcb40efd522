// Package services provides standardized error types for service layer
// operations.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid flow status")
	ErrEmptyOwnerID     = errors.New("owner ID cannot be empty")

	// Publishing validation errors (400 Bad Request).
	ErrFlowNameRequired    = errors.New("flow name is required")
	ErrNodesRequired       = errors.New("flow must have at least one node")
	ErrTriggerNodeRequired = errors.New("flow must have at least one enabled trigger node")
	ErrFlowNil             = errors.New("flow cannot be nil")

	// Not found.
	ErrFlowNotFound     = errors.New("flow not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrVersionNotFound  = errors.New("template version not found")

	// Business logic conflicts (409 Conflict).
	ErrCannotModifyPublished  = errors.New("cannot modify published flow")
	ErrFlowNotPublished       = errors.New("flow is not published")
	ErrAlreadyPublished       = errors.New("flow is already published")
	ErrStaleValidation        = errors.New("flow changed since validation; validate again")
	ErrUnknownValidationToken = errors.New("unknown or expired validation token")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrFlowNameRequired) ||
		errors.Is(err, ErrNodesRequired) ||
		errors.Is(err, ErrTriggerNodeRequired) ||
		errors.Is(err, ErrFlowNil)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFlowNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrVersionNotFound)
}

// IsConflictError checks if an error is a business logic conflict that
// should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished) ||
		errors.Is(err, ErrFlowNotPublished) ||
		errors.Is(err, ErrAlreadyPublished) ||
		errors.Is(err, ErrStaleValidation) ||
		errors.Is(err, ErrUnknownValidationToken)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
