package persistence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dukex/pathway/pkg/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// AllowedSortFields is the allowlist for ListWorkflowsOptions.SortBy.
var AllowedSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"employee_name": true,
	"status":        true,
}

// ListWorkflowsOptions filters, sorts and paginates a workflow listing.
type ListWorkflowsOptions struct {
	Status    *models.WorkflowStatus
	Type      *models.WorkflowType
	ClientID  string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// WorkflowListResult is one page of a listing.
type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// Normalize applies defaults and validates the sort parameters against the allowlist.
func (o *ListWorkflowsOptions) Normalize() error {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.SortBy == "" {
		o.SortBy = "created_at"
	}

	o.SortOrder = strings.ToLower(o.SortOrder)
	if o.SortOrder == "" {
		o.SortOrder = "desc"
	}

	if !AllowedSortFields[o.SortBy] {
		return fmt.Errorf("%w: %s", ErrInvalidSortField, o.SortBy)
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		return fmt.Errorf("%w: sort order %s", ErrInvalidSortField, o.SortOrder)
	}

	return nil
}

// Matches reports whether a workflow passes the filters.
func (o *ListWorkflowsOptions) Matches(workflow *models.Workflow) bool {
	if o.Status != nil && workflow.Status != *o.Status {
		return false
	}

	if o.Type != nil && workflow.Type != *o.Type {
		return false
	}

	if o.ClientID != "" && workflow.ClientID != o.ClientID {
		return false
	}

	return true
}

// PageWorkflows filters, sorts and paginates workflows in memory. Backends that cannot
// push the query down use it.
func PageWorkflows(workflows []*models.Workflow, opts ListWorkflowsOptions) (*WorkflowListResult, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if opts.Matches(workflow) {
			filtered = append(filtered, workflow)
		}
	}

	sortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))
	startIdx := opts.Offset
	endIdx := opts.Offset + opts.Limit

	if startIdx >= len(filtered) {
		return &WorkflowListResult{
			Workflows:   make([]*models.Workflow, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &WorkflowListResult{
		Workflows:   filtered[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

// sortWorkflows sorts workflows in-place based on the specified field and order.
func sortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.SliceStable(workflows, func(i, j int) bool {
		a, b := workflows[i], workflows[j]
		if sortOrder == "desc" {
			a, b = b, a
		}

		switch sortBy {
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "employee_name":
			return strings.ToLower(a.Employee.Name) < strings.ToLower(b.Employee.Name)
		case "status":
			return a.Status < b.Status
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

// NotificationFilter narrows a notification listing. Zero values match everything.
type NotificationFilter struct {
	WorkflowID  string
	TaskID      string
	RecipientID string
	Kind        models.NotificationKind
	DedupeKey   string
	UnreadOnly  bool
	Limit       int
}

// Matches reports whether a notification passes the filter.
func (f NotificationFilter) Matches(notification *models.Notification) bool {
	switch {
	case f.WorkflowID != "" && notification.WorkflowID != f.WorkflowID:
		return false
	case f.TaskID != "" && notification.TaskID != f.TaskID:
		return false
	case f.RecipientID != "" && notification.RecipientID != f.RecipientID:
		return false
	case f.Kind != "" && notification.Kind != f.Kind:
		return false
	case f.DedupeKey != "" && notification.DedupeKey != f.DedupeKey:
		return false
	case f.UnreadOnly && notification.Read:
		return false
	}

	return true
}

// FilterNotifications applies the filter and returns the newest notifications first.
func FilterNotifications(notifications []*models.Notification, filter NotificationFilter) []*models.Notification {
	matched := make([]*models.Notification, 0, len(notifications))

	for _, notification := range notifications {
		if filter.Matches(notification) {
			matched = append(matched, notification)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched
}

// CheckRevision enforces the optimistic concurrency contract of WorkflowRepository.Save.
// stored is nil when the workflow is not persisted yet.
func CheckRevision(stored *models.Workflow, workflow *models.Workflow) error {
	if stored == nil {
		if workflow.Revision != 0 {
			return RevisionConflict(workflow.ID, 0, workflow.Revision)
		}

		return nil
	}

	if stored.Revision != workflow.Revision {
		return RevisionConflict(workflow.ID, stored.Revision, workflow.Revision)
	}

	return nil
}
