package workflow

import (
	"testing"

	"github.com/dukex/pathway/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id string, status models.TaskStatus, dependsOn ...string) *models.Task {
	return &models.Task{
		ID:          id,
		Name:        "Task " + id,
		Department:  models.DepartmentHR,
		Status:      status,
		DependentOn: dependsOn,
		Comments:    []*models.Comment{},
	}
}

func newTestWorkflow(stages ...*models.Stage) *models.Workflow {
	return &models.Workflow{
		ID:     "wf-1",
		Type:   models.WorkflowTypeOnboarding,
		Status: models.WorkflowStatusInProgress,
		Employee: models.EmployeeSnapshot{
			Name:  "Grace Hopper",
			Email: "grace@example.com",
		},
		Stages: stages,
	}
}

func stage(id string, order int, tasks ...*models.Task) *models.Stage {
	return &models.Stage{ID: id, Name: "Stage " + id, Order: order, Tasks: tasks}
}

func TestIsAvailable(t *testing.T) {
	w := newTestWorkflow(
		stage("s1", 1,
			task("t1", models.TaskStatusDone),
			task("t2", models.TaskStatusOpen, "t1"),
			task("t3", models.TaskStatusOpen, "t1", "t2"),
			task("t4", models.TaskStatusOpen, "missing"),
			task("t5", models.TaskStatusNeedInfo),
		),
	)

	tests := []struct {
		name     string
		taskID   string
		expected bool
	}{
		{name: "no dependencies", taskID: "t1", expected: true},
		{name: "no dependencies regardless of status", taskID: "t5", expected: true},
		{name: "all dependencies done", taskID: "t2", expected: true},
		{name: "one dependency not done", taskID: "t3", expected: false},
		{name: "unknown dependency fails closed", taskID: "t4", expected: false},
		{name: "unknown task", taskID: "nope", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAvailable(w, tt.taskID))
		})
	}
}

// Scenario: t2 depends on t1. Done unlocks it, reopening locks it again.
func TestIsAvailable_FollowsDependencyStatus(t *testing.T) {
	t1 := task("t1", models.TaskStatusOpen)
	t2 := task("t2", models.TaskStatusOpen, "t1")
	w := newTestWorkflow(stage("s1", 1, t1, t2))

	assert.False(t, IsAvailable(w, "t2"))

	t1.Status = models.TaskStatusDone
	assert.True(t, IsAvailable(w, "t2"))

	for _, status := range []models.TaskStatus{models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusNeedInfo} {
		t1.Status = status
		assert.False(t, IsAvailable(w, "t2"), "status %s must lock the dependent", status)
	}
}

func TestIsAvailable_DependencyInAnotherStage(t *testing.T) {
	w := newTestWorkflow(
		stage("s1", 1, task("t1", models.TaskStatusDone)),
		stage("s2", 2, task("t2", models.TaskStatusOpen, "t1")),
	)

	assert.True(t, IsAvailable(w, "t2"))
}

func TestIsAvailable_TerminalWorkflow(t *testing.T) {
	w := newTestWorkflow(stage("s1", 1, task("t1", models.TaskStatusOpen)))
	w.Status = models.WorkflowStatusCancelled

	assert.False(t, IsAvailable(w, "t1"))
	assert.Empty(t, AvailableTasks(w))
}

func TestIsAvailable_CycleDoesNotLoop(t *testing.T) {
	w := newTestWorkflow(stage("s1", 1,
		task("a", models.TaskStatusOpen, "b"),
		task("b", models.TaskStatusOpen, "a"),
	))

	assert.False(t, IsAvailable(w, "a"))
	assert.False(t, IsAvailable(w, "b"))
}

func TestBlockingDependencies(t *testing.T) {
	w := newTestWorkflow(stage("s1", 1,
		task("t1", models.TaskStatusDone),
		task("t2", models.TaskStatusInProgress),
		task("t3", models.TaskStatusOpen, "t1", "t2", "ghost"),
	))

	assert.Equal(t, []string{"t2", "ghost"}, BlockingDependencies(w, "t3"))
	assert.Nil(t, BlockingDependencies(w, "t1"))
	assert.Nil(t, BlockingDependencies(w, "unknown"))
}

func TestAvailableTasks(t *testing.T) {
	w := newTestWorkflow(
		stage("s2", 2, task("t3", models.TaskStatusOpen, "t2")),
		stage("s1", 1,
			task("t1", models.TaskStatusDone),
			task("t2", models.TaskStatusOpen, "t1"),
			task("t4", models.TaskStatusInProgress),
		),
	)

	available := AvailableTasks(w)
	require.Len(t, available, 2)
	assert.Equal(t, "t2", available[0].ID)
	assert.Equal(t, "t4", available[1].ID)
}

func TestAllTasksDoneAndProgress(t *testing.T) {
	t2 := task("t2", models.TaskStatusOpen)
	w := newTestWorkflow(
		stage("s1", 1, task("t1", models.TaskStatusDone)),
		stage("s2", 2, t2),
	)

	assert.False(t, AllTasksDone(w))

	done, total := Progress(w)
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)

	t2.Status = models.TaskStatusDone
	assert.True(t, AllTasksDone(w))

	assert.True(t, AllTasksDone(newTestWorkflow()))
	assert.False(t, AllTasksDone(nil))
}
