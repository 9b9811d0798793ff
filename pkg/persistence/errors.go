package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTemplateNotFound indicates a template was not found by the given identifier.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrAccountNotFound indicates no employee account matches.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotificationNotFound indicates a notification was not found.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrUserNotFound indicates a user was not found in the directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrRevisionConflict indicates the aggregate changed since it was loaded.
	ErrRevisionConflict = errors.New("revision conflict")

	// ErrDuplicateEmail indicates another record already owns the email.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidSortField indicates a list request named a field outside the allowlist.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	WorkflowID string // Workflow ID if applicable
	Err        error  // Underlying error
	Message    string // Additional context message
}

func (e *WorkflowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for workflow %s: %s (%v)", e.Op, e.WorkflowID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// RevisionConflict builds the error returned by Save when the stored revision moved on.
func RevisionConflict(workflowID string, stored, given int64) *WorkflowError {
	return &WorkflowError{
		Op:         "Save",
		WorkflowID: workflowID,
		Err:        ErrRevisionConflict,
		Message:    fmt.Sprintf("stored revision %d, given %d", stored, given),
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsRevisionConflict checks if an error indicates a concurrent modification.
func IsRevisionConflict(err error) bool {
	return errors.Is(err, ErrRevisionConflict)
}

// IsNotFound checks if an error indicates any missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsInvalidSortField checks if an error indicates a rejected sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
