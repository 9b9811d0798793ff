package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTaskStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected TaskStatus
		ok       bool
	}{
		{raw: "open", expected: TaskStatusOpen, ok: true},
		{raw: "Open", expected: TaskStatusOpen, ok: true},
		{raw: "Pending", expected: TaskStatusOpen, ok: true},
		{raw: "Not Started", expected: TaskStatusOpen, ok: true},
		{raw: "In Progress", expected: TaskStatusInProgress, ok: true},
		{raw: "in-progress", expected: TaskStatusInProgress, ok: true},
		{raw: "Done", expected: TaskStatusDone, ok: true},
		{raw: "Completed", expected: TaskStatusDone, ok: true},
		{raw: "Need Info", expected: TaskStatusNeedInfo, ok: true},
		{raw: "Need Information", expected: TaskStatusNeedInfo, ok: true},
		{raw: "archived", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			status, ok := NormalizeTaskStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestTask_UnmarshalLegacyValues(t *testing.T) {
	body := `{
		"id": "t1",
		"name": "Create email account",
		"department": "it",
		"status": "Completed",
		"priority": "High",
		"comments": []
	}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(body), &task))

	assert.Equal(t, TaskStatusDone, task.Status)
	assert.Equal(t, DepartmentIT, task.Department)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.True(t, task.IsDone())
}

func TestTask_UnmarshalEmptyStatusIsOpen(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","status":""}`), &task))

	assert.Equal(t, TaskStatusOpen, task.Status)
}

func TestTask_UnmarshalUnknownStatusFails(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":"t1","status":"archived"}`), &task)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task status")
}

func TestWorkflow_RoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	templateID := "tpl-1"

	original := &Workflow{
		ID:         "wf-1",
		Type:       WorkflowTypeOffboarding,
		TemplateID: &templateID,
		ClientID:   "client-1",
		Employee: EmployeeSnapshot{
			Name:      "Ada Lovelace",
			Email:     "ada@example.com",
			Position:  "Engineer",
			StartDate: &start,
		},
		Stages: []*Stage{
			{
				ID:    "s1",
				Name:  "Exit",
				Order: 1,
				Tasks: []*Task{
					{
						ID:          "t1",
						Name:        "Collect laptop",
						Department:  DepartmentIT,
						Status:      TaskStatusNeedInfo,
						Priority:    PriorityLow,
						DependentOn: []string{"t0"},
						IndentLevel: 1,
						OutputValue: &TaskOutput{
							Documents: []Document{{Name: "receipt.pdf", URL: "https://files/receipt.pdf"}},
							Data:      map[string]any{"asset_tag": "LT-42"},
						},
						Comments: []*Comment{
							{
								ID:        "c1",
								Text:      "Where is it?",
								Author:    CommentAuthor{ID: "u1", Name: "HR", IsAdmin: true},
								CreatedAt: created,
								Replies: []*Comment{
									{ID: "c2", Text: "At home", CreatedAt: created, Replies: []*Comment{}},
								},
							},
						},
					},
				},
			},
		},
		Status: WorkflowStatusInProgress,
		Offboarding: &OffboardingDetails{
			ExitType:      "resignation",
			ExitReason:    "relocation",
			DocumentNames: []string{"exit-interview"},
		},
		Revision:  3,
		CreatedAt: created,
		UpdatedAt: created,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Workflow
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original, &decoded)
}

func TestWorkflow_FindTaskAndDocuments(t *testing.T) {
	workflow := &Workflow{
		Stages: []*Stage{
			{ID: "s1", Tasks: []*Task{{ID: "a"}, {ID: "b", OutputValue: &TaskOutput{Documents: []Document{{Name: "contract"}}}}}},
			{ID: "s2", Tasks: []*Task{{ID: "c", OutputValue: &TaskOutput{Documents: []Document{{Name: "nda", URL: "https://x/nda"}}}}}},
		},
	}

	task, stage := workflow.FindTask("c")
	require.NotNil(t, task)
	assert.Equal(t, "s2", stage.ID)

	missing, missingStage := workflow.FindTask("zzz")
	assert.Nil(t, missing)
	assert.Nil(t, missingStage)

	documents := workflow.Documents()
	require.Len(t, documents, 2)
	assert.Equal(t, "contract", documents[0].Reference())
	assert.Equal(t, "https://x/nda", documents[1].Reference())
}

func TestWorkflow_IsTerminal(t *testing.T) {
	assert.False(t, (&Workflow{Status: WorkflowStatusInProgress}).IsTerminal())
	assert.True(t, (&Workflow{Status: WorkflowStatusCompleted}).IsTerminal())
	assert.True(t, (&Workflow{Status: WorkflowStatusCancelled}).IsTerminal())
}

func TestCommentTree(t *testing.T) {
	comments := []*Comment{
		{ID: "c1", Replies: []*Comment{
			{ID: "c1.1", Replies: []*Comment{{ID: "c1.1.1"}}},
		}},
		{ID: "c2"},
	}

	assert.Equal(t, "c1.1.1", FindComment(comments, "c1.1.1").ID)
	assert.Nil(t, FindComment(comments, "nope"))
	assert.Equal(t, 3, CommentDepth(comments, "c1.1.1"))
	assert.Equal(t, 1, CommentDepth(comments, "c2"))
	assert.Equal(t, 0, CommentDepth(comments, "nope"))
	assert.Equal(t, 4, CountComments(comments))
}

func TestEmployeeAccount_MergeDocuments(t *testing.T) {
	account := &EmployeeAccount{Documents: []Document{{Name: "contract"}}}

	account.MergeDocuments([]Document{{Name: "contract", URL: "new"}, {Name: "id-card"}, {Name: "id-card"}})

	require.Len(t, account.Documents, 2)
	assert.Equal(t, "", account.Documents[0].URL)
	assert.Equal(t, "id-card", account.Documents[1].Name)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
