package redis_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	pathwayredis "github.com/dukex/pathway/pkg/persistence/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	redisOnce sync.Once
	redisURL  string
	redisErr  error
)

func setupTestRedis(t *testing.T) (*pathwayredis.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	redisOnce.Do(func() {
		var container testcontainers.Container

		container, redisErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor: wait.ForAll(
					wait.ForLog("Ready to accept connections"),
					wait.ForExposedPort(),
				).WithDeadline(60 * time.Second),
			},
			Started: true,
		})
		if redisErr != nil {
			return
		}

		var endpoint string

		endpoint, redisErr = container.Endpoint(ctx, "")
		redisURL = "redis://" + endpoint
	})
	require.NoError(t, redisErr)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := pathwayredis.NewPersistence(ctx, logger, redisURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, p.FlushForTest(ctx))
		require.NoError(t, p.Close(ctx))
	})

	return p, ctx
}

func newWorkflow(id string) *models.Workflow {
	return &models.Workflow{
		ID:       id,
		Type:     models.WorkflowTypeOnboarding,
		ClientID: "acme",
		Employee: models.EmployeeSnapshot{Name: "Ada Lovelace", Email: "ada@example.com"},
		Status:   models.WorkflowStatusInProgress,
		Stages: []*models.Stage{
			{ID: "s1", Name: "Day one", Order: 1, Tasks: []*models.Task{
				{ID: "t1", Name: "Create email", Department: models.DepartmentIT, Status: models.TaskStatusOpen, Comments: []*models.Comment{}},
			}},
		},
	}
}

func TestWorkflowRepository_RevisionCheck(t *testing.T) {
	p, ctx := setupTestRedis(t)
	repo := p.WorkflowRepository()

	workflow := newWorkflow("wf-1")
	require.NoError(t, repo.Save(ctx, workflow))
	assert.Equal(t, int64(1), workflow.Revision)

	stale, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)

	workflow.Stages[0].Tasks[0].Status = models.TaskStatusDone
	require.NoError(t, repo.Save(ctx, workflow))

	err = repo.Save(ctx, stale)
	assert.True(t, persistence.IsRevisionConflict(err))
	assert.Equal(t, int64(1), stale.Revision)

	loaded, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Revision)
	assert.Equal(t, models.TaskStatusDone, loaded.Stages[0].Tasks[0].Status)

	result, err := repo.ListWorkflows(ctx, persistence.ListWorkflowsOptions{ClientID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalCount)

	require.NoError(t, repo.Delete(ctx, "wf-1"))

	missing, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountRepository_UniqueEmail(t *testing.T) {
	p, ctx := setupTestRedis(t)
	accounts := p.AccountRepository()

	account := &models.EmployeeAccount{ID: "a1", Name: "Ada", Email: "Ada@Example.com", Status: models.AccountStatusActive}
	require.NoError(t, accounts.Save(ctx, account))

	found, err := accounts.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a1", found.ID)

	err = accounts.Save(ctx, &models.EmployeeAccount{ID: "a2", Name: "Copy", Email: "ADA@example.com"})
	require.ErrorIs(t, err, persistence.ErrDuplicateEmail)

	account.Email = "countess@example.com"
	require.NoError(t, accounts.Save(ctx, account))

	old, err := accounts.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Nil(t, old)

	require.NoError(t, accounts.Save(ctx, &models.EmployeeAccount{ID: "a2", Name: "Other Ada", Email: "ada@example.com"}))
}

func TestNotificationAndUserRepositories(t *testing.T) {
	p, ctx := setupTestRedis(t)

	users := p.UserRepository()
	require.NoError(t, users.Save(ctx, &models.User{ID: "u1", Name: "HR", Email: "hr@example.com", Role: models.UserRoleAdmin}))

	user, err := users.GetByEmail(ctx, "HR@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	notifications := p.NotificationRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, notifications.Save(ctx, &models.Notification{ID: "n1", Kind: models.NotificationTaskOverdue, RecipientID: "u1", DedupeKey: "t1@2026-01-01", CreatedAt: base}))
	require.NoError(t, notifications.Save(ctx, &models.Notification{ID: "n2", Kind: models.NotificationTaskAssigned, RecipientID: "u1", CreatedAt: base.Add(time.Minute)}))

	listed, err := notifications.List(ctx, persistence.NotificationFilter{DedupeKey: "t1@2026-01-01"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "n1", listed[0].ID)

	all, err := notifications.List(ctx, persistence.NotificationFilter{RecipientID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "n2", all[0].ID)
}
