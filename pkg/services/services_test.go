package services

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/metrics"
	"github.com/dukex/pathway/pkg/mocks"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/dukex/pathway/pkg/persistence/file"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	persistence persistence.Persistence
	eventBus    *mocks.MockEventBus
	metrics     *metrics.Metrics
	opts        Options
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	eventBus := &mocks.MockEventBus{}
	eventBus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := file.NewPersistence(t.TempDir())
	m := metrics.New()

	next := 0

	return &testEnv{
		persistence: p,
		eventBus:    eventBus,
		metrics:     m,
		opts: Options{
			Persistence: p,
			EventBus:    eventBus,
			Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
			Metrics:     m,
			Now:         func() time.Time { return testNow },
			NewID: func() string {
				next++

				return fmt.Sprintf("id-%d", next)
			},
		},
	}
}

func (e *testEnv) notifications(t *testing.T, kind models.NotificationKind) []*models.Notification {
	t.Helper()

	notifications, err := e.persistence.NotificationRepository().List(t.Context(), persistence.NotificationFilter{Kind: kind})
	require.NoError(t, err)

	return notifications
}

func (e *testEnv) changes(change events.ChangeKind) int {
	count := 0

	for _, event := range e.eventBus.PublishedOfType(events.WorkflowChangedEvent) {
		if event.(events.WorkflowChanged).Change == change {
			count++
		}
	}

	return count
}

func (e *testEnv) saveWorkflow(t *testing.T, w *models.Workflow) *models.Workflow {
	t.Helper()

	require.NoError(t, e.persistence.WorkflowRepository().Save(t.Context(), w))

	return w
}

func (e *testEnv) saveUser(t *testing.T, id, name, email string) *models.User {
	t.Helper()

	user := &models.User{ID: id, Name: name, Email: email, Role: models.UserRoleMember}
	require.NoError(t, e.persistence.UserRepository().Save(t.Context(), user))

	return user
}

func testTask(id string, status models.TaskStatus, dependsOn ...string) *models.Task {
	return &models.Task{
		ID:          id,
		Name:        "Task " + id,
		Department:  models.DepartmentIT,
		Status:      status,
		Priority:    models.PriorityMedium,
		DependentOn: dependsOn,
		Comments:    []*models.Comment{},
	}
}

func testWorkflow(id string, workflowType models.WorkflowType, tasks ...*models.Task) *models.Workflow {
	return &models.Workflow{
		ID:       id,
		Type:     workflowType,
		ClientID: "acme",
		Employee: models.EmployeeSnapshot{
			Name:           "Ada Lovelace",
			Email:          "a@x.com",
			Position:       "Engineer",
			Department:     "R&D",
			EmploymentType: "full_time",
		},
		Status: models.WorkflowStatusInProgress,
		Stages: []*models.Stage{
			{ID: "s1", Name: "First", Order: 1, Tasks: tasks},
		},
	}
}
