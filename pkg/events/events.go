// Package events defines the change events published after workflow, account and
// notification writes.
package events

import (
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every pathway event; listeners dispatch on the event type metadata.
const Topic = "pathway.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowChangedEvent     EventType = "workflows.changed"
	NotificationEmittedEvent EventType = "notification.emitted"
	AccountChangedEvent      EventType = "account.changed"
)

// ChangeKind says what happened to the aggregate.
type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeCompleted ChangeKind = "completed"
	ChangeCancelled ChangeKind = "cancelled"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowChanged is published after every successful workflow write.
type WorkflowChanged struct {
	BaseEvent

	Change   ChangeKind            `json:"change"`
	Status   models.WorkflowStatus `json:"status"`
	Revision int64                 `json:"revision"`
	TaskID   string                `json:"task_id,omitempty"`
}

func (w WorkflowChanged) GetType() EventType {
	return WorkflowChangedEvent
}

// NotificationEmitted mirrors a persisted notification record for delivery adapters.
type NotificationEmitted struct {
	BaseEvent

	NotificationID string                  `json:"notification_id"`
	Kind           models.NotificationKind `json:"kind"`
	Message        string                  `json:"message"`
	TaskID         string                  `json:"task_id,omitempty"`
	RecipientID    string                  `json:"recipient_id,omitempty"`
}

func (n NotificationEmitted) GetType() EventType {
	return NotificationEmittedEvent
}

// AccountChanged is published when completing a workflow provisions or deactivates an
// employee account.
type AccountChanged struct {
	BaseEvent

	AccountID string               `json:"account_id"`
	Email     string               `json:"email"`
	Status    models.AccountStatus `json:"status"`
	Created   bool                 `json:"created"`
}

func (a AccountChanged) GetType() EventType {
	return AccountChangedEvent
}

func NewBaseEvent(eventType EventType, workflowID, actorID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		ActorID:    actorID,
		Metadata:   make(map[string]any),
	}
}

func NewWorkflowChanged(workflow *models.Workflow, change ChangeKind, actorID string) WorkflowChanged {
	return WorkflowChanged{
		BaseEvent: NewBaseEvent(WorkflowChangedEvent, workflow.ID, actorID),
		Change:    change,
		Status:    workflow.Status,
		Revision:  workflow.Revision,
	}
}

func NewNotificationEmitted(notification *models.Notification) NotificationEmitted {
	return NotificationEmitted{
		BaseEvent:      NewBaseEvent(NotificationEmittedEvent, notification.WorkflowID, ""),
		NotificationID: notification.ID,
		Kind:           notification.Kind,
		Message:        notification.Message,
		TaskID:         notification.TaskID,
		RecipientID:    notification.RecipientID,
	}
}

func NewAccountChanged(account *models.EmployeeAccount, workflowID string, created bool) AccountChanged {
	return AccountChanged{
		BaseEvent: NewBaseEvent(AccountChangedEvent, workflowID, ""),
		AccountID: account.ID,
		Email:     account.Email,
		Status:    account.Status,
		Created:   created,
	}
}
