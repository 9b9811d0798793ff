package web

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/pathway/pkg/services"
	"github.com/dukex/pathway/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cycle := &workflow.ValidationError{Problems: []workflow.Problem{
		{Field: "dependent_on", Err: workflow.ErrDependencyCycle, Detail: "dependency cycle: [a b a]"},
	}}

	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{
			name:   "coded validation",
			err:    services.NewValidationError("List", services.CodeInvalidSortField, "bad", services.ErrInvalidSortField),
			status: fiber.StatusBadRequest,
			kind:   "invalid_sort_field",
		},
		{
			name:   "dependency cycle",
			err:    cycle,
			status: fiber.StatusBadRequest,
			kind:   "validation_error",
		},
		{
			name:   "missing task",
			err:    fmt.Errorf("%w: t9", services.ErrTaskNotFound),
			status: fiber.StatusNotFound,
			kind:   "not_found",
		},
		{
			name:   "locked task",
			err:    services.NewConflictError("UpdateStatus", services.CodeTaskLocked, "waiting", services.ErrTaskLocked),
			status: fiber.StatusConflict,
			kind:   "task_locked",
		},
		{
			name:   "revision conflict",
			err:    services.ErrRevisionConflict,
			status: fiber.StatusConflict,
			kind:   "conflict",
		},
		{
			name:   "unexpected",
			err:    errors.New("connection refused"),
			status: fiber.StatusInternalServerError,
			kind:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := classify(tt.err)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
