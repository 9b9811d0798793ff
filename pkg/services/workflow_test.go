package services

import (
	"testing"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_Create(t *testing.T) {
	env := newTestEnv(t)
	service := NewWorkflow(env.opts)

	instance := testWorkflow("ignored", models.WorkflowTypeOnboarding,
		&models.Task{ID: "t1", Name: "Welcome pack", Department: models.DepartmentHR},
		&models.Task{ID: "t2", Name: "Payroll", Department: models.DepartmentFinance, Status: models.TaskStatusDone, DependentOn: []string{"t1"}},
	)
	instance.Status = models.WorkflowStatusCompleted
	instance.Offboarding = &models.OffboardingDetails{ExitType: "resignation"}

	created, err := service.Create(t.Context(), instance, "hr-1")
	require.NoError(t, err)

	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, models.WorkflowStatusInProgress, created.Status)
	assert.Nil(t, created.Offboarding)
	assert.Equal(t, int64(1), created.Revision)

	t1, _ := created.FindTask("t1")
	assert.Equal(t, models.TaskStatusOpen, t1.Status)
	assert.Equal(t, models.PriorityMedium, t1.Priority)
	assert.NotNil(t, t1.Comments)

	t2, _ := created.FindTask("t2")
	require.NotNil(t, t2.CompletedAt)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fetched.Employee.Name)
}

func TestWorkflow_CreateRejectsInvalidGraphs(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []*models.Task
		wantErr error
	}{
		{
			name:    "cycle",
			tasks:   []*models.Task{testTask("a", "", "b"), testTask("b", "", "a")},
			wantErr: workflow.ErrDependencyCycle,
		},
		{
			name:    "self dependency",
			tasks:   []*models.Task{testTask("a", "", "a")},
			wantErr: workflow.ErrSelfDependency,
		},
		{
			name:    "unknown dependency",
			tasks:   []*models.Task{testTask("a", "", "ghost")},
			wantErr: workflow.ErrUnknownDependency,
		},
		{
			name:    "duplicate id",
			tasks:   []*models.Task{testTask("a", ""), testTask("a", "")},
			wantErr: workflow.ErrDuplicateTaskID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			service := NewWorkflow(env.opts)

			_, err := service.Create(t.Context(), testWorkflow("", models.WorkflowTypeOnboarding, tt.tasks...), "hr-1")
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))

			all, err := env.persistence.WorkflowRepository().GetAll(t.Context())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestWorkflow_CreateRejectsNilEntries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *models.Workflow)
	}{
		{
			name:   "nil task",
			mutate: func(w *models.Workflow) { w.Stages[0].Tasks = append(w.Stages[0].Tasks, nil) },
		},
		{
			name:   "nil stage",
			mutate: func(w *models.Workflow) { w.Stages = append(w.Stages, nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			service := NewWorkflow(env.opts)

			instance := testWorkflow("", models.WorkflowTypeOnboarding, testTask("a", ""))
			tt.mutate(instance)

			_, err := service.Create(t.Context(), instance, "hr-1")
			require.ErrorIs(t, err, workflow.ErrInvalidTemplate)
			assert.True(t, IsValidationError(err))

			all, err := env.persistence.WorkflowRepository().GetAll(t.Context())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestWorkflow_ListWorkflows(t *testing.T) {
	env := newTestEnv(t)
	service := NewWorkflow(env.opts)

	first := testWorkflow("wf-1", models.WorkflowTypeOnboarding, testTask("t1", models.TaskStatusOpen))
	first.Employee.Name = "Zed"
	env.saveWorkflow(t, first)

	second := testWorkflow("wf-2", models.WorkflowTypeOffboarding, testTask("t1", models.TaskStatusOpen))
	second.Employee.Name = "Amy"
	env.saveWorkflow(t, second)

	result, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{SortBy: "employee_name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, "wf-2", result.Workflows[0].ID)
	assert.Equal(t, int64(2), result.TotalCount)

	offboarding := models.WorkflowTypeOffboarding

	result, err = service.ListWorkflows(t.Context(), ListWorkflowsRequest{Type: &offboarding, Limit: 1})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.False(t, result.HasNextPage)

	_, err = service.ListWorkflows(t.Context(), ListWorkflowsRequest{SortBy: "password"})
	require.ErrorIs(t, err, ErrInvalidSortField)
	assert.Equal(t, CodeInvalidSortField, ErrorCode(err))

	bogus := models.WorkflowStatus("archived")

	_, err = service.ListWorkflows(t.Context(), ListWorkflowsRequest{Status: &bogus})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestWorkflow_Delete(t *testing.T) {
	env := newTestEnv(t)
	service := NewWorkflow(env.opts)

	env.saveWorkflow(t, testWorkflow("wf-1", models.WorkflowTypeOnboarding, testTask("t1", models.TaskStatusOpen)))

	require.NoError(t, service.Delete(t.Context(), "wf-1"))
	assert.Equal(t, 1, env.changes("deleted"))

	_, err := service.FetchByID(t.Context(), "wf-1")
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	require.ErrorIs(t, service.Delete(t.Context(), "wf-1"), ErrWorkflowNotFound)
}

func TestWorkflow_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	message, healthy := NewWorkflow(env.opts).HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Equal(t, "Persistence layer is healthy", message)

	_, healthy = NewWorkflow(Options{}).HealthCheck(t.Context())
	assert.False(t, healthy)
}
