package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Graph validation errors. They are wrapped by ValidationError problems.
var (
	// ErrInvalidTemplate indicates a template or workflow failed structural validation.
	ErrInvalidTemplate = errors.New("invalid workflow definition")

	// ErrDependencyCycle indicates the task dependency graph contains a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrUnknownDependency indicates a dependency id that names no task in the same workflow.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrSelfDependency indicates a task that depends on itself.
	ErrSelfDependency = errors.New("task depends on itself")

	// ErrDuplicateTaskID indicates two tasks share an id.
	ErrDuplicateTaskID = errors.New("duplicate task id")
)

// Problem is a single validation failure.
type Problem struct {
	Field string `json:"field"`
	Err   error  `json:"-"`
	// Detail is the human readable form of Err.
	Detail string `json:"detail"`
}

// ValidationError collects every problem found while validating a definition.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	details := make([]string, 0, len(e.Problems))
	for _, problem := range e.Problems {
		if problem.Field != "" {
			details = append(details, fmt.Sprintf("%s: %s", problem.Field, problem.Detail))
		} else {
			details = append(details, problem.Detail)
		}
	}

	return fmt.Sprintf("%v: %s", ErrInvalidTemplate, strings.Join(details, "; "))
}

// Unwrap exposes ErrInvalidTemplate and every problem cause to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrInvalidTemplate}

	for _, problem := range e.Problems {
		if problem.Err != nil {
			errs = append(errs, problem.Err)
		}
	}

	return errs
}

func (e *ValidationError) add(field string, err error, detail string) {
	e.Problems = append(e.Problems, Problem{Field: field, Err: err, Detail: detail})
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}

	return e
}

// IsValidationError checks if an error came from definition validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTemplate)
}
