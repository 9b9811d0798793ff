package workflow

import (
	"fmt"
	"testing"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTemplate() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:   "tpl-onboarding",
		Name: "Engineering onboarding",
		Type: models.WorkflowTypeOnboarding,
		Stages: []*models.TemplateStage{
			{
				ID:    "day-one",
				Name:  "Day one",
				Order: 2,
				Tasks: []*models.TemplateTask{
					{ID: "laptop", Name: "Hand over laptop", Department: models.DepartmentIT, DependentOn: []string{"account"}, IndentLevel: 1},
				},
			},
			{
				Name:  "Before start",
				Order: 1,
				Tasks: []*models.TemplateTask{
					{ID: "contract", Name: "Sign contract", Department: models.DepartmentHR, Priority: models.PriorityHigh, DefaultAssignee: "hr@example.com"},
					{ID: "account", Name: "Create account", Department: models.DepartmentIT, DependentOn: []string{"contract"}, ActionType: "create_credentials"},
				},
			},
		},
	}
}

func sequentialIDs() func() string {
	next := 0

	return func() string {
		next++

		return fmt.Sprintf("id-%d", next)
	}
}

func TestInstantiate(t *testing.T) {
	tpl := newTestTemplate()
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	hr := &models.Assignee{ID: "u-hr", Name: "HR Team", Email: "hr@example.com"}

	instance, err := Instantiate(tpl, InstantiateOptions{
		WorkflowID: "wf-1",
		ClientID:   "acme",
		Employee:   models.EmployeeSnapshot{Name: "Ada", Email: "ada@example.com"},
		Offboarding: &models.OffboardingDetails{
			ExitType: "ignored for onboarding",
		},
		ResolveAssignee: func(hint string) *models.Assignee {
			if hint == hr.Email {
				return hr
			}

			return nil
		},
		Now:   now,
		NewID: sequentialIDs(),
	})
	require.NoError(t, err)

	assert.Equal(t, "wf-1", instance.ID)
	assert.Equal(t, models.WorkflowStatusInProgress, instance.Status)
	assert.Equal(t, int64(0), instance.Revision)
	require.NotNil(t, instance.TemplateID)
	assert.Equal(t, "tpl-onboarding", *instance.TemplateID)
	assert.Equal(t, "acme", instance.ClientID)
	assert.Equal(t, now, instance.CreatedAt)
	assert.Nil(t, instance.Offboarding)

	require.Len(t, instance.Stages, 2)
	assert.Equal(t, "id-1", instance.Stages[0].ID)
	assert.Equal(t, "Before start", instance.Stages[0].Name)
	assert.Equal(t, 1, instance.Stages[0].Order)
	assert.Equal(t, "day-one", instance.Stages[1].ID)
	assert.Equal(t, 2, instance.Stages[1].Order)

	contract, _ := instance.FindTask("contract")
	require.NotNil(t, contract)
	assert.Equal(t, hr, contract.Assignee)
	assert.Equal(t, models.TaskStatusOpen, contract.Status)
	assert.Equal(t, models.PriorityHigh, contract.Priority)
	assert.NotNil(t, contract.Comments)
	assert.Empty(t, contract.Comments)

	account, _ := instance.FindTask("account")
	require.NotNil(t, account)
	assert.Nil(t, account.Assignee)
	assert.Equal(t, models.PriorityMedium, account.Priority)
	assert.Equal(t, []string{"contract"}, account.DependentOn)
	assert.Equal(t, "create_credentials", account.ActionType)

	laptop, _ := instance.FindTask("laptop")
	require.NotNil(t, laptop)
	assert.Equal(t, 1, laptop.IndentLevel)

	assert.True(t, IsAvailable(instance, "contract"))
	assert.False(t, IsAvailable(instance, "account"))
}

func TestInstantiate_DoesNotMutateTemplate(t *testing.T) {
	tpl := newTestTemplate()
	before := newTestTemplate()

	instance, err := Instantiate(tpl, InstantiateOptions{RegenerateTaskIDs: true})
	require.NoError(t, err)

	instance.Stages[0].Tasks[0].Status = models.TaskStatusDone
	instance.Stages[0].Tasks[1].DependentOn[0] = "changed"

	assert.Equal(t, before, tpl)
}

// Scenario: two instances of one template each reference their own task copies.
func TestInstantiate_TwoInstancesAreIndependent(t *testing.T) {
	tpl := newTestTemplate()

	first, err := Instantiate(tpl, InstantiateOptions{WorkflowID: "wf-a", RegenerateTaskIDs: true})
	require.NoError(t, err)

	second, err := Instantiate(tpl, InstantiateOptions{WorkflowID: "wf-b", RegenerateTaskIDs: true})
	require.NoError(t, err)

	firstIDs := map[string]bool{}
	for _, task := range first.Tasks() {
		firstIDs[task.ID] = true
	}

	for _, task := range second.Tasks() {
		assert.False(t, firstIDs[task.ID], "task id %s is shared between instances", task.ID)

		for _, dependencyID := range task.DependentOn {
			dependency, _ := second.FindTask(dependencyID)
			assert.NotNil(t, dependency, "dependency %s must resolve inside its own workflow", dependencyID)
		}
	}

	// Completing the first instance's contract unlocks nothing in the second.
	firstContract := first.Stages[0].Tasks[0]
	firstContract.Status = models.TaskStatusDone

	firstAccount := first.Stages[0].Tasks[1]
	secondAccount := second.Stages[0].Tasks[1]

	assert.True(t, IsAvailable(first, firstAccount.ID))
	assert.False(t, IsAvailable(second, secondAccount.ID))
}

func TestInstantiate_RegenerateRemapsDependencies(t *testing.T) {
	instance, err := Instantiate(newTestTemplate(), InstantiateOptions{
		RegenerateTaskIDs: true,
		NewID:             sequentialIDs(),
	})
	require.NoError(t, err)

	assert.NotContains(t, []string{"contract", "account", "laptop"}, instance.Stages[0].Tasks[0].ID)

	account := instance.Stages[0].Tasks[1]
	contract := instance.Stages[0].Tasks[0]
	laptop := instance.Stages[1].Tasks[0]

	assert.Equal(t, []string{contract.ID}, account.DependentOn)
	assert.Equal(t, []string{account.ID}, laptop.DependentOn)
}

func TestInstantiate_OffboardingCarriesExitDetails(t *testing.T) {
	tpl := newTestTemplate()
	tpl.Type = models.WorkflowTypeOffboarding

	details := &models.OffboardingDetails{ExitType: "resignation", DocumentNames: []string{"exit-letter"}}

	instance, err := Instantiate(tpl, InstantiateOptions{Offboarding: details})
	require.NoError(t, err)

	require.NotNil(t, instance.Offboarding)
	assert.Equal(t, "resignation", instance.Offboarding.ExitType)

	details.DocumentNames[0] = "mutated"
	assert.Equal(t, []string{"exit-letter"}, instance.Offboarding.DocumentNames)
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tpl *models.WorkflowTemplate)
		target error
	}{
		{
			name:   "missing name",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Name = "" },
			target: ErrInvalidTemplate,
		},
		{
			name:   "invalid type",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Type = "transfer" },
			target: ErrInvalidTemplate,
		},
		{
			name:   "invalid department",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages[0].Tasks[0].Department = "Legal" },
			target: ErrInvalidTemplate,
		},
		{
			name:   "invalid priority",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages[0].Tasks[0].Priority = "urgent" },
			target: ErrInvalidTemplate,
		},
		{
			name:   "no stages",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages = nil },
			target: ErrInvalidTemplate,
		},
		{
			name:   "duplicate task id",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages[0].Tasks[0].ID = "contract" },
			target: ErrDuplicateTaskID,
		},
		{
			name:   "self dependency",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages[1].Tasks[0].DependentOn = []string{"contract"} },
			target: ErrSelfDependency,
		},
		{
			name:   "unknown dependency",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages[0].Tasks[0].DependentOn = []string{"badge"} },
			target: ErrUnknownDependency,
		},
		{
			name:   "cycle",
			mutate: func(tpl *models.WorkflowTemplate) { tpl.Stages[1].Tasks[0].DependentOn = []string{"laptop"} },
			target: ErrDependencyCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := newTestTemplate()
			tt.mutate(tpl)

			err := ValidateTemplate(tpl)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsValidationError(err))

			_, err = Instantiate(tpl, InstantiateOptions{})
			assert.ErrorIs(t, err, tt.target)
		})
	}

	assert.NoError(t, ValidateTemplate(newTestTemplate()))
}
