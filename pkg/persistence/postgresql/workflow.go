package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

var sortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"employee_name": "lower(employee_name)",
	"status":        "status",
}

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all workflows from the database.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	return queryDocuments[models.Workflow](ctx, r.db, r.logger, "SELECT document FROM workflows ORDER BY created_at DESC")
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, "SELECT document FROM workflows WHERE id = $1", id)

	workflow, err := scanDocument[models.Workflow](row)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// ListWorkflows pushes filtering, sorting and pagination down to SQL.
func (r *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if opts.Type != nil {
		args = append(args, string(*opts.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	if opts.ClientID != "" {
		args = append(args, opts.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int64

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows "+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	// Sort column and direction come from the allowlist checked by Normalize.
	query := fmt.Sprintf(
		"SELECT document FROM workflows %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d",
		where, sortColumns[opts.SortBy], strings.ToUpper(opts.SortOrder), len(args)+1, len(args)+2,
	)

	workflows, err := queryDocuments[models.Workflow](ctx, r.db, r.logger, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, err
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(workflows)) < totalCount,
	}, nil
}

// Save inserts a new workflow or updates it when the stored revision still matches.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now
	expected := workflow.Revision
	workflow.Revision = expected + 1

	document, err := json.Marshal(workflow)
	if err != nil {
		workflow.Revision = expected

		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	var result sql.Result

	if expected == 0 {
		result, err = r.db.ExecContext(ctx, `
			INSERT INTO workflows (id, type, status, client_id, template_id, employee_name, employee_email,
				revision, document, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING
		`,
			workflow.ID,
			workflow.Type,
			workflow.Status,
			workflow.ClientID,
			workflow.TemplateID,
			workflow.Employee.Name,
			models.NormalizeEmail(workflow.Employee.Email),
			workflow.Revision,
			document,
			workflow.CreatedAt,
			workflow.UpdatedAt,
		)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE workflows SET
				type = $2,
				status = $3,
				client_id = $4,
				template_id = $5,
				employee_name = $6,
				employee_email = $7,
				revision = $8,
				document = $9,
				updated_at = $10
			WHERE id = $1 AND revision = $11
		`,
			workflow.ID,
			workflow.Type,
			workflow.Status,
			workflow.ClientID,
			workflow.TemplateID,
			workflow.Employee.Name,
			models.NormalizeEmail(workflow.Employee.Email),
			workflow.Revision,
			document,
			workflow.UpdatedAt,
			expected,
		)
	}

	if err != nil {
		workflow.Revision = expected

		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		workflow.Revision = expected

		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if affected == 0 {
		workflow.Revision = expected

		return persistence.RevisionConflict(workflow.ID, r.storedRevision(ctx, workflow.ID), expected)
	}

	return nil
}

// storedRevision is best effort and only feeds the conflict message.
func (r *WorkflowRepository) storedRevision(ctx context.Context, id string) int64 {
	var revision int64

	err := r.db.QueryRowContext(ctx, "SELECT revision FROM workflows WHERE id = $1", id).Scan(&revision)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.logger.ErrorContext(ctx, "failed to read stored revision", "workflow_id", id, "error", err)
	}

	return revision
}

// Delete removes a workflow. Deleting a missing workflow is not an error.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}
