// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"time"

	"github.com/dukex/pathway/pkg/models"
)

// ActorHeader carries the id of the user performing the request.
const ActorHeader = "X-Actor-ID"

// CreateWorkflowRequest represents the request body for a directly authored workflow.
type CreateWorkflowRequest struct {
	Type        models.WorkflowType        `json:"type"                  validate:"required,oneof=onboarding offboarding"`
	ClientID    string                     `json:"client_id"`
	Employee    models.EmployeeSnapshot    `json:"employee"`
	Stages      []*models.Stage            `json:"stages"                validate:"required,min=1"`
	Offboarding *models.OffboardingDetails `json:"offboarding,omitempty"`
}

// ToWorkflow builds the workflow the service validates and stores.
func (r CreateWorkflowRequest) ToWorkflow() *models.Workflow {
	return &models.Workflow{
		Type:        r.Type,
		ClientID:    r.ClientID,
		Employee:    r.Employee,
		Stages:      r.Stages,
		Offboarding: r.Offboarding,
	}
}

// UpdateTaskStatusRequest accepts canonical statuses and legacy aliases such as "Completed".
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignTaskRequest names a directory user by id or email. An empty user_id unassigns.
type AssignTaskRequest struct {
	UserID string `json:"user_id"`
}

// SetDueDateRequest sets the due date; null clears it.
type SetDueDateRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// AddCommentRequest represents a new comment or reply. When author is omitted the
// acting user is looked up in the directory.
type AddCommentRequest struct {
	Text   string                `json:"text"             validate:"required"`
	Author *models.CommentAuthor `json:"author,omitempty"`
}

// CancelWorkflowRequest carries the mandatory cancellation reason.
type CancelWorkflowRequest struct {
	Reason string `json:"reason"`
}

// CreateUserRequest represents a new user directory entry.
type CreateUserRequest struct {
	Name   string          `json:"name"             validate:"required"`
	Email  string          `json:"email"            validate:"required,email"`
	Role   models.UserRole `json:"role,omitempty"   validate:"omitempty,oneof=admin member"`
	Avatar string          `json:"avatar,omitempty"`
}

// Pagination echoes the effective paging parameters.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Sorting echoes the effective sort parameters.
type Sorting struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// ListWorkflowsResponse is one page of workflows with its paging metadata.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
	Pagination  Pagination         `json:"pagination"`
	Sorting     Sorting            `json:"sorting"`
}
