package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// WorkflowRepository stores workflows and enforces the revision check with WATCH/MULTI.
type WorkflowRepository struct {
	client    redis.UniversalClient
	workflows *store[models.Workflow]
}

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	return r.workflows.all(ctx)
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	return r.workflows.get(ctx, r.client, id)
}

func (r *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	all, err := r.workflows.all(ctx)
	if err != nil {
		return nil, err
	}

	return persistence.PageWorkflows(all, opts)
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	key := r.workflows.key(workflow.ID)
	expected := workflow.Revision

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := r.workflows.get(ctx, tx, workflow.ID)
		if err != nil {
			return err
		}

		if err := persistence.CheckRevision(stored, workflow); err != nil {
			return err
		}

		now := time.Now().UTC()
		if workflow.CreatedAt.IsZero() {
			workflow.CreatedAt = now
		}

		workflow.UpdatedAt = now
		workflow.Revision = expected + 1

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return r.workflows.put(ctx, pipe, workflow.ID, workflow)
		})

		return err
	}, key)
	if err == nil {
		return nil
	}

	workflow.Revision = expected

	if errors.Is(err, redis.TxFailedErr) {
		return persistence.RevisionConflict(workflow.ID, expected+1, expected)
	}

	if persistence.IsRevisionConflict(err) {
		return err
	}

	return persistence.NewWorkflowError("Save", workflow.ID, err)
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	return r.workflows.remove(ctx, id)
}

// TemplateRepository stores workflow templates.
type TemplateRepository struct {
	templates *store[models.WorkflowTemplate]
}

func (r *TemplateRepository) GetAll(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	templates, err := r.templates.all(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	return r.templates.get(ctx, r.templates.client, id)
}

func (r *TemplateRepository) Save(ctx context.Context, template *models.WorkflowTemplate) error {
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	return r.templates.save(ctx, template.ID, template)
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	return r.templates.remove(ctx, id)
}

// AccountRepository keeps an email -> id hash to enforce one account per email.
type AccountRepository struct {
	client   redis.UniversalClient
	accounts *store[models.EmployeeAccount]
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.EmployeeAccount, error) {
	accounts, err := r.accounts.all(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return accounts, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.EmployeeAccount, error) {
	id, err := lookupEmail(ctx, r.client, r.accounts.emailKey(), email)
	if err != nil || id == "" {
		return nil, err
	}

	return r.accounts.get(ctx, r.client, id)
}

func (r *AccountRepository) Save(ctx context.Context, account *models.EmployeeAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	account.UpdatedAt = now

	return saveWithUniqueEmail(ctx, r.client, r.accounts, account.ID, account.Email, account)
}

// NotificationRepository stores notification records.
type NotificationRepository struct {
	notifications *store[models.Notification]
}

func (r *NotificationRepository) Save(ctx context.Context, notification *models.Notification) error {
	return r.notifications.save(ctx, notification.ID, notification)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	return r.notifications.get(ctx, r.notifications.client, id)
}

func (r *NotificationRepository) List(ctx context.Context, filter persistence.NotificationFilter) ([]*models.Notification, error) {
	notifications, err := r.notifications.all(ctx)
	if err != nil {
		return nil, err
	}

	return persistence.FilterNotifications(notifications, filter), nil
}

// UserRepository is the Redis user directory.
type UserRepository struct {
	client redis.UniversalClient
	users  *store[models.User]
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	users, err := r.users.all(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.users.get(ctx, r.client, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := lookupEmail(ctx, r.client, r.users.emailKey(), email)
	if err != nil || id == "" {
		return nil, err
	}

	return r.users.get(ctx, r.client, id)
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	return saveWithUniqueEmail(ctx, r.client, r.users, user.ID, user.Email, user)
}

func lookupEmail(ctx context.Context, client redis.UniversalClient, hashKey, email string) (string, error) {
	id, err := client.HGet(ctx, hashKey, models.NormalizeEmail(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}

		return "", fmt.Errorf("failed to look up email: %w", err)
	}

	return id, nil
}

// saveWithUniqueEmail writes a record and moves its email index entry atomically. The
// email hash and the record key are watched so a concurrent claim aborts the transaction.
func saveWithUniqueEmail[T any](ctx context.Context, client redis.UniversalClient, records *store[T], id, email string, record *T) error {
	normalized := models.NormalizeEmail(email)

	err := client.Watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, records.emailKey(), normalized).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if owner != "" && owner != id {
			return persistence.ErrDuplicateEmail
		}

		var previousEmail string

		previous, err := records.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if previous != nil {
			previousEmail = emailOf(previous)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previousEmail != "" && previousEmail != normalized {
				pipe.HDel(ctx, records.emailKey(), previousEmail)
			}

			pipe.HSet(ctx, records.emailKey(), normalized, id)

			return records.put(ctx, pipe, id, record)
		})

		return err
	}, records.emailKey(), records.key(id))
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: concurrent update of %s", persistence.ErrDuplicateEmail, normalized)
		}

		if errors.Is(err, persistence.ErrDuplicateEmail) {
			return err
		}

		return fmt.Errorf("failed to save %s %s: %w", records.name, id, err)
	}

	return nil
}

func emailOf(record any) string {
	switch value := record.(type) {
	case *models.EmployeeAccount:
		return models.NormalizeEmail(value.Email)
	case *models.User:
		return models.NormalizeEmail(value.Email)
	default:
		return ""
	}
}
