package file

import (
	"context"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// NotificationRepository handles notification file operations.
type NotificationRepository struct {
	notifications *collection[models.Notification]
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(root string) *NotificationRepository {
	return &NotificationRepository{notifications: newCollection[models.Notification](root, "notifications")}
}

func (nr *NotificationRepository) Save(_ context.Context, notification *models.Notification) error {
	return nr.notifications.write(notification.ID, notification)
}

func (nr *NotificationRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	return nr.notifications.read(id)
}

// List returns matching notifications, newest first.
func (nr *NotificationRepository) List(_ context.Context, filter persistence.NotificationFilter) ([]*models.Notification, error) {
	notifications, err := nr.notifications.all()
	if err != nil {
		return nil, err
	}

	return persistence.FilterNotifications(notifications, filter), nil
}
