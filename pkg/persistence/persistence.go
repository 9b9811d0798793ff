// Package persistence provides the data storage abstraction layer for workflows, templates,
// employee accounts, notifications and users.
package persistence

import (
	"context"

	"github.com/dukex/pathway/pkg/models"
)

// Persistence aggregates the repositories of one storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	TemplateRepository() TemplateRepository
	AccountRepository() AccountRepository
	NotificationRepository() NotificationRepository
	UserRepository() UserRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow aggregates wholesale.
//
// Save is an optimistic compare-and-swap on Workflow.Revision: it fails with
// ErrRevisionConflict when the stored revision differs from the one on the value being
// saved (a workflow that is not stored yet must carry revision 0). On success the
// revision is incremented on the passed value and UpdatedAt is refreshed.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// GetByID returns nil, nil when the workflow does not exist.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
}

// TemplateRepository stores workflow templates.
type TemplateRepository interface {
	GetAll(ctx context.Context) ([]*models.WorkflowTemplate, error)
	// GetByID returns nil, nil when the template does not exist.
	GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	Save(ctx context.Context, template *models.WorkflowTemplate) error
	Delete(ctx context.Context, id string) error
}

// AccountRepository stores employee accounts. At most one account exists per email,
// compared case-insensitively; Save returns ErrDuplicateEmail otherwise.
type AccountRepository interface {
	GetAll(ctx context.Context) ([]*models.EmployeeAccount, error)
	// GetByEmail returns nil, nil when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.EmployeeAccount, error)
	Save(ctx context.Context, account *models.EmployeeAccount) error
}

// NotificationRepository stores emitted notification records.
type NotificationRepository interface {
	Save(ctx context.Context, notification *models.Notification) error
	// GetByID returns nil, nil when the notification does not exist.
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]*models.Notification, error)
}

// UserRepository is the user directory used for assignment and supervisor lookup.
type UserRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	// GetByID returns nil, nil when the user does not exist.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns nil, nil when no user matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}
