package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/pathway/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowChanged_JSONSerialization(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Status: models.WorkflowStatusCompleted, Revision: 4}

	original := NewWorkflowChanged(workflow, ChangeCompleted, "u1")
	original.TaskID = "t1"

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"workflows.changed"`)
	assert.Contains(t, string(jsonData), `"change":"completed"`)

	var deserialized WorkflowChanged

	require.NoError(t, json.Unmarshal(jsonData, &deserialized))
	assert.Equal(t, original.ID, deserialized.ID)
	assert.Equal(t, "wf-1", deserialized.WorkflowID)
	assert.Equal(t, "u1", deserialized.ActorID)
	assert.Equal(t, int64(4), deserialized.Revision)
	assert.Equal(t, WorkflowChangedEvent, deserialized.GetType())
}

func TestNotificationEmitted_CopiesRecord(t *testing.T) {
	notification := &models.Notification{
		ID:          "n1",
		Kind:        models.NotificationTaskAvailable,
		Message:     "Create email is now available",
		WorkflowID:  "wf-1",
		TaskID:      "t2",
		RecipientID: "u2",
	}

	event := NewNotificationEmitted(notification)

	assert.Equal(t, NotificationEmittedEvent, event.GetType())
	assert.Equal(t, "n1", event.NotificationID)
	assert.Equal(t, "wf-1", event.WorkflowID)
	assert.Equal(t, "t2", event.TaskID)
	assert.Equal(t, "u2", event.RecipientID)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestAccountChanged(t *testing.T) {
	account := &models.EmployeeAccount{ID: "a1", Email: "ada@example.com", Status: models.AccountStatusInactive}

	event := NewAccountChanged(account, "wf-9", false)

	assert.Equal(t, AccountChangedEvent, event.GetType())
	assert.Equal(t, "wf-9", event.WorkflowID)
	assert.Equal(t, models.AccountStatusInactive, event.Status)
	assert.False(t, event.Created)
}
