// Package services implements the workflow use cases: lifecycle transitions, task
// progression, comment threads, template instantiation and notifications.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/pathway/pkg/persistence"
	"github.com/dukex/pathway/pkg/workflow"
)

// Not found errors (404). The persistence sentinels are reused so callers can match
// either package.
var (
	ErrWorkflowNotFound     = persistence.ErrWorkflowNotFound
	ErrTemplateNotFound     = persistence.ErrTemplateNotFound
	ErrAccountNotFound      = persistence.ErrAccountNotFound
	ErrNotificationNotFound = persistence.ErrNotificationNotFound
	ErrUserNotFound         = persistence.ErrUserNotFound
	ErrTaskNotFound         = errors.New("task not found")
	ErrCommentNotFound      = errors.New("comment not found")
)

// Validation errors (400).
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrEmptyComment     = errors.New("comment text cannot be empty")
)

// Business logic conflicts (409).
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrTaskLocked             = errors.New("task has unfinished dependencies")
	ErrTasksIncomplete        = errors.New("workflow has unfinished tasks")
	ErrRevisionConflict       = persistence.ErrRevisionConflict
	ErrDuplicateEmail         = persistence.ErrDuplicateEmail
)

// Error codes returned in API problem responses.
const (
	CodeCancellationReasonRequired = "CANCELLATION_REASON_REQUIRED"
	CodeWorkflowNotInProgress      = "WORKFLOW_NOT_IN_PROGRESS"
	CodeWorkflowNotCompleted       = "WORKFLOW_NOT_COMPLETED"
	CodeTaskLocked                 = "TASK_LOCKED"
	CodeTasksIncomplete            = "TASKS_INCOMPLETE"
	CodeInvalidSortField           = "INVALID_SORT_FIELD"
	CodeInvalidStatus              = "INVALID_STATUS"
	CodeEmptyComment               = "EMPTY_COMMENT"
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

// ErrorCode exposes Code to tracing and logging helpers.
func (e *ServiceError) ErrorCode() string {
	return e.Code
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

// NewConflictError creates a business rule violation with context.
func NewConflictError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyComment) ||
		persistence.IsInvalidSortField(err) ||
		workflow.IsValidationError(err)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrTaskLocked) ||
		errors.Is(err, ErrTasksIncomplete) ||
		errors.Is(err, ErrRevisionConflict) ||
		errors.Is(err, ErrDuplicateEmail)
}

// IsNotFoundError checks if an error names a missing record that should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsNotFound(err) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrCommentNotFound)
}

// ErrorCode returns the API code carried by a ServiceError, if any.
func ErrorCode(err error) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}

	return ""
}
