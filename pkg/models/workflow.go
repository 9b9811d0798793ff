// Package models defines the core domain models for onboarding and offboarding workflows.
package models

import (
	"strings"
	"time"
)

// WorkflowType distinguishes onboarding from offboarding instances.
type WorkflowType string

const (
	WorkflowTypeOnboarding  WorkflowType = "onboarding"
	WorkflowTypeOffboarding WorkflowType = "offboarding"
)

// Valid reports whether t is a known workflow type.
func (t WorkflowType) Valid() bool {
	return t == WorkflowTypeOnboarding || t == WorkflowTypeOffboarding
}

// Title returns the human readable form used in notification messages.
func (t WorkflowType) Title() string {
	switch t {
	case WorkflowTypeOnboarding:
		return "Onboarding"
	case WorkflowTypeOffboarding:
		return "Offboarding"
	default:
		return string(t)
	}
}

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusInProgress WorkflowStatus = "in_progress" // Tasks can progress
	WorkflowStatusCompleted  WorkflowStatus = "completed"   // Terminal
	WorkflowStatusCancelled  WorkflowStatus = "cancelled"   // Terminal
)

// EmployeeSnapshot is the employee data copied into a workflow at creation time.
type EmployeeSnapshot struct {
	Name           string     `json:"name"            validate:"required"`
	Email          string     `json:"email"           validate:"required,email"`
	Position       string     `json:"position"`
	Department     string     `json:"department"`
	EmploymentType string     `json:"employment_type"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	SupervisorID   string     `json:"supervisor_id,omitempty"`
}

// OffboardingDetails carries exit data for offboarding workflows.
type OffboardingDetails struct {
	ExitType       string     `json:"exit_type"`
	ExitReason     string     `json:"exit_reason"`
	LastWorkingDay *time.Time `json:"last_working_day,omitempty"`
	DocumentNames  []string   `json:"document_names,omitempty"`
}

// Cancellation records who cancelled a workflow and why.
type Cancellation struct {
	Reason      string    `json:"reason"`
	CancelledBy string    `json:"cancelled_by"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// Stage is an ordered grouping of tasks within a workflow.
type Stage struct {
	ID          string  `json:"id"          validate:"required"`
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description"`
	Order       int     `json:"order"`
	Tasks       []*Task `json:"tasks"       validate:"dive,required"`
}

// Workflow is one onboarding or offboarding instance for a specific employee event.
type Workflow struct {
	ID           string              `json:"id"`
	Type         WorkflowType        `json:"type"                   validate:"required,oneof=onboarding offboarding"`
	TemplateID   *string             `json:"template_id,omitempty"`
	ClientID     string              `json:"client_id"`
	Employee     EmployeeSnapshot    `json:"employee"`
	Stages       []*Stage            `json:"stages"                 validate:"dive,required"`
	Status       WorkflowStatus      `json:"status"`
	Offboarding  *OffboardingDetails `json:"offboarding,omitempty"`
	Cancellation *Cancellation       `json:"cancellation,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	CompletedBy  string              `json:"completed_by,omitempty"`
	Revision     int64               `json:"revision"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// IsTerminal reports whether the workflow can no longer progress.
func (w *Workflow) IsTerminal() bool {
	return w.Status == WorkflowStatusCompleted || w.Status == WorkflowStatusCancelled
}

// FindTask locates a task by id across all stages.
func (w *Workflow) FindTask(taskID string) (*Task, *Stage) {
	for _, stage := range w.Stages {
		if stage == nil {
			continue
		}

		for _, task := range stage.Tasks {
			if task != nil && task.ID == taskID {
				return task, stage
			}
		}
	}

	return nil, nil
}

// Tasks returns every task in stored stage order without sorting.
func (w *Workflow) Tasks() []*Task {
	var tasks []*Task

	for _, stage := range w.Stages {
		if stage == nil {
			continue
		}

		for _, task := range stage.Tasks {
			if task != nil {
				tasks = append(tasks, task)
			}
		}
	}

	return tasks
}

// Documents collects every document produced by any task output, in stage order.
func (w *Workflow) Documents() []Document {
	var documents []Document

	for _, task := range w.Tasks() {
		if task.OutputValue == nil {
			continue
		}

		documents = append(documents, task.OutputValue.Documents...)
	}

	return documents
}

// NormalizeEmail is the comparison form used for account matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
