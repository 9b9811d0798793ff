package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the canonical four-value task status.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusNeedInfo   TaskStatus = "need_info"
)

// taskStatusAliases maps every accepted spelling, after folding, to its canonical status.
// Legacy records used Pending/Not Started/Completed/Need Information.
var taskStatusAliases = map[string]TaskStatus{
	"open":             TaskStatusOpen,
	"pending":          TaskStatusOpen,
	"not_started":      TaskStatusOpen,
	"in_progress":      TaskStatusInProgress,
	"done":             TaskStatusDone,
	"completed":        TaskStatusDone,
	"need_info":        TaskStatusNeedInfo,
	"need_information": TaskStatusNeedInfo,
}

// NormalizeTaskStatus maps a raw status, including legacy aliases and display forms
// such as "In Progress", to the canonical value.
func NormalizeTaskStatus(raw string) (TaskStatus, bool) {
	status, ok := taskStatusAliases[foldEnum(raw)]

	return status, ok
}

// UnmarshalJSON normalizes legacy aliases on read. An empty status decodes as open.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("task status must be a string: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		*s = TaskStatusOpen

		return nil
	}

	status, ok := NormalizeTaskStatus(raw)
	if !ok {
		return fmt.Errorf("unknown task status %q", raw)
	}

	*s = status

	return nil
}

// Department owns a task.
type Department string

const (
	DepartmentHR        Department = "HR"
	DepartmentIT        Department = "IT"
	DepartmentFinance   Department = "Finance"
	DepartmentMarketing Department = "Marketing"
)

// UnmarshalJSON accepts any casing of the known departments. Unknown values are kept
// verbatim so validation can report them.
func (d *Department) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("department must be a string: %w", err)
	}

	switch foldEnum(raw) {
	case "hr":
		*d = DepartmentHR
	case "it":
		*d = DepartmentIT
	case "finance":
		*d = DepartmentFinance
	case "marketing":
		*d = DepartmentMarketing
	default:
		*d = Department(raw)
	}

	return nil
}

// Priority of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// UnmarshalJSON folds casing ("High" -> "high"). Unknown values are kept for validation.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}

	folded := Priority(foldEnum(raw))
	switch folded {
	case PriorityHigh, PriorityMedium, PriorityLow:
		*p = folded
	default:
		*p = Priority(raw)
	}

	return nil
}

// Assignee is the user snapshot a task is assigned to.
type Assignee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Document is a file reference produced by a task action.
type Document struct {
	Name       string     `json:"name"`
	URL        string     `json:"url,omitempty"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// Reference returns the url when present, otherwise the name.
func (d Document) Reference() string {
	if d.URL != "" {
		return d.URL
	}

	return d.Name
}

// TaskOutput is the free-form payload produced by a task action type.
type TaskOutput struct {
	Documents []Document     `json:"documents,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Task is the atomic unit of work in a workflow.
type Task struct {
	ID          string      `json:"id"                     validate:"required"`
	Name        string      `json:"name"                   validate:"required"`
	Description string      `json:"description"`
	Department  Department  `json:"department"             validate:"required,oneof=HR IT Finance Marketing"`
	Assignee    *Assignee   `json:"assignee,omitempty"`
	Status      TaskStatus  `json:"status"                 validate:"omitempty,oneof=open in_progress done need_info"`
	Priority    Priority    `json:"priority,omitempty"     validate:"omitempty,oneof=high medium low"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	DependentOn []string    `json:"dependent_on,omitempty"`
	IndentLevel int         `json:"indent_level"`
	ActionType  string      `json:"action_type,omitempty"`
	OutputValue *TaskOutput `json:"output_value,omitempty"`
	Comments    []*Comment  `json:"comments"`
}

// IsDone reports whether the task reached the done status.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

func foldEnum(raw string) string {
	folded := strings.ToLower(strings.TrimSpace(raw))
	folded = strings.NewReplacer(" ", "_", "-", "_").Replace(folded)

	return folded
}
