package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/dukex/pathway/pkg/workflow"
)

type Workflow struct {
	*core
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(opts Options) *Workflow {
	return &Workflow{core: newCore(opts)}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	Status   *models.WorkflowStatus
	Type     *models.WorkflowType
	ClientID string

	// Sorting
	SortBy    string
	SortOrder string
}

// ListWorkflowsResponse contains the result of listing workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// ListWorkflows retrieves workflows with filtering, sorting, and pagination.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	if err := w.validateListWorkflowsRequest(&req); err != nil {
		return nil, err
	}

	result, err := w.persistence.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Status:    req.Status,
		Type:      req.Type,
		ClientID:  req.ClientID,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return &ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// validateListWorkflowsRequest validates and sets defaults for the request.
func (w *Workflow) validateListWorkflowsRequest(req *ListWorkflowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = persistence.DefaultListLimit
	}

	if req.Limit > persistence.MaxListLimit {
		req.Limit = persistence.MaxListLimit
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	if !persistence.AllowedSortFields[req.SortBy] {
		allowed := make([]string, 0, len(persistence.AllowedSortFields))
		for field := range persistence.AllowedSortFields {
			allowed = append(allowed, field)
		}

		slices.Sort(allowed)

		return NewValidationError(
			"validateListWorkflowsRequest",
			CodeInvalidSortField,
			fmt.Sprintf("invalid sort field '%s', allowed: %s", req.SortBy, strings.Join(allowed, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortField,
		)
	}

	if req.Status != nil {
		allowedStatuses := []models.WorkflowStatus{
			models.WorkflowStatusInProgress,
			models.WorkflowStatusCompleted,
			models.WorkflowStatusCancelled,
		}

		if !slices.Contains(allowedStatuses, *req.Status) {
			return NewValidationError(
				"validateListWorkflowsRequest",
				CodeInvalidStatus,
				fmt.Sprintf("invalid status '%s'", *req.Status),
				ErrInvalidStatus,
			)
		}
	}

	if req.Type != nil && !req.Type.Valid() {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_TYPE",
			fmt.Sprintf("invalid workflow type '%s'", *req.Type),
			ErrInvalidRequest,
		)
	}

	req.ClientID = strings.TrimSpace(req.ClientID)

	return nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.loadWorkflow(ctx, id)
}

// Create stores a directly authored workflow. It goes through the same structural and
// dependency cycle checks as template instantiation and always starts in progress.
func (w *Workflow) Create(ctx context.Context, instance *models.Workflow, actorID string) (*models.Workflow, error) {
	if err := workflow.ValidateWorkflow(instance); err != nil {
		return nil, err
	}

	now := w.now()

	instance.ID = w.newID()
	instance.Status = models.WorkflowStatusInProgress
	instance.Revision = 0
	instance.Cancellation = nil
	instance.CompletedAt = nil
	instance.CompletedBy = ""
	instance.CreatedAt = now
	instance.UpdatedAt = now

	if instance.Type != models.WorkflowTypeOffboarding {
		instance.Offboarding = nil
	}

	for _, task := range instance.Tasks() {
		if task.Status == "" {
			task.Status = models.TaskStatusOpen
		}

		if task.Priority == "" {
			task.Priority = models.PriorityMedium
		}

		if task.Comments == nil {
			task.Comments = []*models.Comment{}
		}

		if task.IsDone() && task.CompletedAt == nil {
			task.CompletedAt = &now
		}
	}

	err := w.saveWorkflow(ctx, instance, events.ChangeCreated, actorID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	w.metrics.WorkflowsCreated.WithLabelValues(string(instance.Type), "direct").Inc()

	return instance, nil
}

// Delete removes a workflow.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	existing, err := w.loadWorkflow(ctx, id)
	if err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.publish(ctx, id, events.NewWorkflowChanged(existing, events.ChangeDeleted, ""))

	return nil
}
