package models

import "time"

// TemplateTask is the design-time shape of a task.
type TemplateTask struct {
	ID              string     `json:"id"                         validate:"required"`
	Name            string     `json:"name"                       validate:"required"`
	Description     string     `json:"description"`
	Department      Department `json:"department"                 validate:"required,oneof=HR IT Finance Marketing"`
	Priority        Priority   `json:"priority,omitempty"         validate:"omitempty,oneof=high medium low"`
	DefaultAssignee string     `json:"default_assignee,omitempty"` // User id or email
	DependentOn     []string   `json:"dependent_on,omitempty"`
	IndentLevel     int        `json:"indent_level"`
	ActionType      string     `json:"action_type,omitempty"`
}

// TemplateStage is the design-time shape of a stage.
type TemplateStage struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Tasks       []*TemplateTask `json:"tasks"       validate:"dive,required"`
}

// WorkflowTemplate is a reusable stage/task graph. Workflow execution never mutates it.
type WorkflowTemplate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"        validate:"required,min=3"`
	Description string           `json:"description"`
	Type        WorkflowType     `json:"type"        validate:"required,oneof=onboarding offboarding"`
	Stages      []*TemplateStage `json:"stages"      validate:"required,min=1,dive,required"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
