package services

import (
	"errors"
	"testing"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/mocks"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockedEnv swaps the workflow and account repositories of a file backed environment
// for testify mocks.
func mockedEnv(t *testing.T) (*testEnv, *mocks.MockWorkflowRepository, *mocks.MockAccountRepository) {
	t.Helper()

	env := newTestEnv(t)

	workflows := &mocks.MockWorkflowRepository{}
	accounts := &mocks.MockAccountRepository{}

	mocked := &mocks.MockPersistence{
		Workflows:     workflows,
		Templates:     env.persistence.TemplateRepository(),
		Accounts:      accounts,
		Notifications: env.persistence.NotificationRepository(),
		Users:         env.persistence.UserRepository(),
	}

	env.opts.Persistence = mocked

	return env, workflows, accounts
}

func TestTasks_UpdateStatus_RevisionConflict(t *testing.T) {
	env, workflows, _ := mockedEnv(t)

	w := testWorkflow("wf-1", models.WorkflowTypeOnboarding, testTask("t1", models.TaskStatusOpen))
	w.Revision = 4

	workflows.On("GetByID", mock.Anything, "wf-1").Return(w, nil)
	workflows.On("Save", mock.Anything, w).Return(persistence.RevisionConflict("wf-1", 5, 4))

	_, err := NewTasks(env.opts).UpdateStatus(t.Context(), "wf-1", "t1", models.TaskStatusDone, "hr-1")
	require.Error(t, err)

	assert.True(t, IsConflictError(err))
	assert.ErrorIs(t, err, ErrRevisionConflict)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.RevisionConflicts), 0)
	assert.Equal(t, 0, env.changes(events.ChangeUpdated))
	assert.Empty(t, env.notifications(t, models.NotificationTaskCompleted))

	workflows.AssertExpectations(t)
}

func TestLifecycle_Complete_AccountFailure(t *testing.T) {
	env, workflows, accounts := mockedEnv(t)

	w := testWorkflow("wf-1", models.WorkflowTypeOnboarding, testTask("t1", models.TaskStatusDone))

	workflows.On("GetByID", mock.Anything, "wf-1").Return(w, nil)
	workflows.On("Save", mock.Anything, w).Return(nil)
	accounts.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connection reset"))

	result, err := NewLifecycle(env.opts).Complete(t.Context(), "wf-1", "hr-1")
	require.Error(t, err)
	require.NotNil(t, result)

	assert.Contains(t, err.Error(), "employee account was not updated")
	assert.Equal(t, models.WorkflowStatusCompleted, result.Status)
	assert.Equal(t, 1, env.changes(events.ChangeCompleted))
	assert.Empty(t, env.notifications(t, models.NotificationWorkflowCompleted))

	accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	workflows.AssertExpectations(t)
}

func TestLifecycle_SyncAccount_AfterAccountFailure(t *testing.T) {
	env, workflows, accounts := mockedEnv(t)

	w := testWorkflow("wf-1", models.WorkflowTypeOnboarding, testTask("t1", models.TaskStatusDone))

	workflows.On("GetByID", mock.Anything, "wf-1").Return(w, nil)
	workflows.On("Save", mock.Anything, w).Return(nil)
	accounts.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connection reset")).Once()
	accounts.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, nil).Once()
	accounts.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	lifecycle := NewLifecycle(env.opts)

	_, err := lifecycle.Complete(t.Context(), "wf-1", "hr-1")
	require.Error(t, err)

	_, err = lifecycle.Complete(t.Context(), "wf-1", "hr-1")
	require.ErrorIs(t, err, ErrInvalidStateTransition)

	account, err := lifecycle.SyncAccount(t.Context(), "wf-1")
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, models.AccountStatusActive, account.Status)
	assert.Equal(t, "acme", account.ClientID)

	accounts.AssertExpectations(t)
}

func TestWorkflow_HealthCheck_Unhealthy(t *testing.T) {
	mocked := &mocks.MockPersistence{}
	mocked.On("HealthCheck", mock.Anything).Return(errors.New("disk full"))

	message, ok := NewWorkflow(Options{Persistence: mocked}).HealthCheck(t.Context())

	assert.False(t, ok)
	assert.Equal(t, "Persistence layer is unhealthy: disk full", message)
	mocked.AssertExpectations(t)
}
