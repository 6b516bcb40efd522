// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates a flow was not found by the given identifier.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrTemplateNotFound indicates a template was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrVersionNotFound indicates a template version was not found.
	ErrVersionNotFound = errors.New("template version not found")

	// ErrInvalidSortField indicates a sort field outside the allow-list.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// FlowError wraps flow-related storage errors with operation context.
type FlowError struct {
	Op     string // Operation being performed (e.g. "GetByID", "Save")
	FlowID string
	Err    error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s operation failed for flow %s: %v", e.Op, e.FlowID, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func (e *FlowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewFlowError creates a flow storage error with context.
func NewFlowError(op, flowID string, err error) *FlowError {
	return &FlowError{Op: op, FlowID: flowID, Err: err}
}

// TemplateError wraps template-related storage errors with context.
type TemplateError struct {
	Op         string
	TemplateID string
	VersionID  string
	Err        error
}

func (e *TemplateError) Error() string {
	if e.VersionID != "" {
		return fmt.Sprintf("%s operation failed for template %s version %s: %v", e.Op, e.TemplateID, e.VersionID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for template %s: %v", e.Op, e.TemplateID, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

func (e *TemplateError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsFlowNotFound checks if an error indicates a missing flow.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsTemplateNotFound checks if an error indicates a missing template.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsVersionNotFound checks if an error indicates a missing template version.
func IsVersionNotFound(err error) bool {
	return errors.Is(err, ErrVersionNotFound)
}

// IsInvalidSortField checks if an error indicates a rejected sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
