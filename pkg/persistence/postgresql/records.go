package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// TemplateRepository handles template database operations.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

func (r *TemplateRepository) GetAll(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	return queryDocuments[models.WorkflowTemplate](ctx, r.db, r.logger, "SELECT document FROM workflow_templates ORDER BY name")
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	template, err := scanDocument[models.WorkflowTemplate](r.db.QueryRowContext(ctx, "SELECT document FROM workflow_templates WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	return template, nil
}

func (r *TemplateRepository) Save(ctx context.Context, template *models.WorkflowTemplate) error {
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	document, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template %s: %w", template.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflow_templates (id, name, type, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`, template.ID, template.Name, template.Type, document, template.CreatedAt, template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", template.ID, err)
	}

	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflow_templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}

// AccountRepository handles employee account database operations.
type AccountRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *sql.DB, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.EmployeeAccount, error) {
	return queryDocuments[models.EmployeeAccount](ctx, r.db, r.logger, "SELECT document FROM employee_accounts ORDER BY name")
}

// GetByEmail matches on the normalized email column.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.EmployeeAccount, error) {
	row := r.db.QueryRowContext(ctx, "SELECT document FROM employee_accounts WHERE email = $1", models.NormalizeEmail(email))

	account, err := scanDocument[models.EmployeeAccount](row)
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *models.EmployeeAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	account.UpdatedAt = now

	document, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account %s: %w", account.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO employee_accounts (id, email, name, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`, account.ID, models.NormalizeEmail(account.Email), account.Name, account.Status, document, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.ErrDuplicateEmail
		}

		return fmt.Errorf("failed to save account %s: %w", account.ID, err)
	}

	return nil
}

// NotificationRepository handles notification database operations.
type NotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sql.DB, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

func (r *NotificationRepository) Save(ctx context.Context, notification *models.Notification) error {
	document, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %s: %w", notification.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, kind, workflow_id, task_id, recipient_id, dedupe_key, read, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			read = EXCLUDED.read,
			document = EXCLUDED.document
	`,
		notification.ID,
		notification.Kind,
		notification.WorkflowID,
		notification.TaskID,
		notification.RecipientID,
		notification.DedupeKey,
		notification.Read,
		document,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notification %s: %w", notification.ID, err)
	}

	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	notification, err := scanDocument[models.Notification](r.db.QueryRowContext(ctx, "SELECT document FROM notifications WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	return notification, nil
}

func (r *NotificationRepository) List(ctx context.Context, filter persistence.NotificationFilter) ([]*models.Notification, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.WorkflowID != "" {
		addCondition("workflow_id", filter.WorkflowID)
	}

	if filter.TaskID != "" {
		addCondition("task_id", filter.TaskID)
	}

	if filter.RecipientID != "" {
		addCondition("recipient_id", filter.RecipientID)
	}

	if filter.Kind != "" {
		addCondition("kind", string(filter.Kind))
	}

	if filter.DedupeKey != "" {
		addCondition("dedupe_key", filter.DedupeKey)
	}

	if filter.UnreadOnly {
		conditions = append(conditions, "read = FALSE")
	}

	query := "SELECT document FROM notifications"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return queryDocuments[models.Notification](ctx, r.db, r.logger, query, args...)
}

// UserRepository handles user directory database operations.
type UserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	return queryDocuments[models.User](ctx, r.db, r.logger, "SELECT document FROM users ORDER BY name")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanDocument[models.User](r.db.QueryRowContext(ctx, "SELECT document FROM users WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanDocument[models.User](r.db.QueryRowContext(ctx, "SELECT document FROM users WHERE email = $1", models.NormalizeEmail(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	document, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, document, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			document = EXCLUDED.document
	`, user.ID, models.NormalizeEmail(user.Email), user.Name, document, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.ErrDuplicateEmail
		}

		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}

	return nil
}
