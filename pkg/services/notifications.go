package services

import (
	"context"
	"fmt"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// Notifications persists notification records and announces them on the event bus.
// Delivery (email, chat, UI badges) belongs to whoever listens for notification.emitted.
type Notifications struct {
	*core
}

// NewNotifications creates a new notification service.
func NewNotifications(opts Options) *Notifications {
	return &Notifications{core: newCore(opts)}
}

// Emit persists a notification record and publishes it. Publish failures are only logged.
func (n *Notifications) Emit(
	ctx context.Context,
	kind models.NotificationKind,
	message, workflowID, taskID, recipientID string,
) (*models.Notification, error) {
	return n.emit(ctx, &models.Notification{
		Kind:        kind,
		Message:     message,
		WorkflowID:  workflowID,
		TaskID:      taskID,
		RecipientID: recipientID,
	})
}

func (n *Notifications) emit(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	notification.ID = n.newID()
	notification.CreatedAt = n.now()

	err := n.persistence.NotificationRepository().Save(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	n.metrics.NotificationsEmitted.WithLabelValues(string(notification.Kind)).Inc()
	n.publish(ctx, notification.ID, events.NewNotificationEmitted(notification))

	return notification, nil
}

// notify is used after a committed write: the write already succeeded, so a failure to
// record the notification is logged instead of failing the operation.
func (n *Notifications) notify(
	ctx context.Context,
	kind models.NotificationKind,
	message, workflowID, taskID, recipientID string,
) {
	_, err := n.Emit(ctx, kind, message, workflowID, taskID, recipientID)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to emit notification",
			"kind", kind, "workflow_id", workflowID, "task_id", taskID, "error", err)
	}
}

// List returns notifications matching the filter, newest first.
func (n *Notifications) List(ctx context.Context, filter persistence.NotificationFilter) ([]*models.Notification, error) {
	notifications, err := n.persistence.NotificationRepository().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read. Marking it twice is not an error.
func (n *Notifications) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	repo := n.persistence.NotificationRepository()

	notification, err := repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if notification == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotificationNotFound, notificationID)
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true

	err = repo.Save(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	return notification, nil
}
