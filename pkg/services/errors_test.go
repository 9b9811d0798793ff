package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/pathway/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		conflict   bool
		notFound   bool
	}{
		{name: "empty comment", err: NewValidationError("AddComment", CodeEmptyComment, "empty", ErrEmptyComment), validation: true},
		{name: "persistence sort field", err: fmt.Errorf("%w: password", persistence.ErrInvalidSortField), validation: true},
		{name: "locked task", err: NewConflictError("UpdateStatus", CodeTaskLocked, "locked", ErrTaskLocked), conflict: true},
		{name: "revision conflict", err: persistence.RevisionConflict("wf-1", 2, 1), conflict: true},
		{name: "duplicate email", err: fmt.Errorf("save: %w", ErrDuplicateEmail), conflict: true},
		{name: "workflow not found", err: persistence.NewWorkflowError("GetByID", "wf-1", ErrWorkflowNotFound), notFound: true},
		{name: "comment not found", err: fmt.Errorf("%w: c1", ErrCommentNotFound), notFound: true},
		{name: "unclassified", err: errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
		})
	}
}

func TestServiceError(t *testing.T) {
	err := NewConflictError("Cancel", CodeCancellationReasonRequired, "a cancellation reason is required", ErrInvalidStateTransition)

	assert.Equal(t, "Cancel: a cancellation reason is required", err.Error())
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Equal(t, CodeCancellationReasonRequired, ErrorCode(fmt.Errorf("wrapped: %w", err)))
	assert.Empty(t, ErrorCode(ErrTaskLocked))

	bare := &ServiceError{Op: "Complete", Err: ErrTasksIncomplete}
	assert.Equal(t, "Complete: workflow has unfinished tasks", bare.Error())
}

func TestParseNextTaskStrategy(t *testing.T) {
	strategy, err := ParseNextTaskStrategy("")
	assert.NoError(t, err)
	assert.Equal(t, NextTaskPositional, strategy)

	strategy, err = ParseNextTaskStrategy("available")
	assert.NoError(t, err)
	assert.Equal(t, NextTaskAvailable, strategy)

	_, err = ParseNextTaskStrategy("random")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
