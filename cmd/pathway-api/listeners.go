package main

import (
	"context"
	"log/slog"

	"github.com/dukex/pathway/pkg/eventbus"
	"github.com/dukex/pathway/pkg/events"
)

// registerEventLoggers records emitted notifications and account changes in the log.
// Delivery to email or chat would hook in here.
func registerEventLoggers(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	err := bus.Handle(events.NotificationEmittedEvent, eventbus.On(func(ctx context.Context, notification *events.NotificationEmitted) error {
		logger.InfoContext(ctx, "Notification emitted",
			"notification_id", notification.NotificationID,
			"kind", notification.Kind,
			"workflow_id", notification.WorkflowID,
			"recipient_id", notification.RecipientID,
		)

		return nil
	}))
	if err != nil {
		return err
	}

	err = bus.Handle(events.AccountChangedEvent, eventbus.On(func(ctx context.Context, account *events.AccountChanged) error {
		logger.InfoContext(ctx, "Employee account changed",
			"account_id", account.AccountID,
			"status", account.Status,
			"created", account.Created,
			"workflow_id", account.WorkflowID,
		)

		return nil
	}))
	if err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}
