package file

import (
	"context"
	"sync"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	mu        sync.Mutex // Serialises the revision check with the write
	workflows *collection[models.Workflow]
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{workflows: newCollection[models.Workflow](root, "workflows")}
}

// ListWorkflows returns paginated and filtered workflows with in-memory operations.
func (wr *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	all, err := wr.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return persistence.PageWorkflows(all, opts)
}

// GetAll loads every stored workflow.
func (wr *WorkflowRepository) GetAll(_ context.Context) ([]*models.Workflow, error) {
	return wr.workflows.all()
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, workflowID string) (*models.Workflow, error) {
	return wr.workflows.read(workflowID)
}

// Save writes a workflow after checking its revision against the stored copy.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	stored, err := wr.workflows.read(workflow.ID)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := persistence.CheckRevision(stored, workflow); err != nil {
		return err
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now
	workflow.Revision++

	if err := wr.workflows.write(workflow.ID, workflow); err != nil {
		workflow.Revision--

		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	return wr.workflows.remove(id)
}
