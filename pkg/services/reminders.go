package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// Reminders emits task_overdue notifications for unfinished tasks past their due date.
type Reminders struct {
	*core

	notifications *Notifications
}

// NewReminders creates a new reminder service.
func NewReminders(opts Options) *Reminders {
	c := newCore(opts)

	return &Reminders{core: c, notifications: &Notifications{core: c}}
}

// OverdueKey identifies one reminder: a task and the due date it missed. Moving the due
// date produces a new key, so the task is reminded again once the new date passes.
func OverdueKey(workflowID, taskID string, dueDate time.Time) string {
	return fmt.Sprintf("%s/%s@%s", workflowID, taskID, dueDate.UTC().Format(time.RFC3339))
}

// NotifyOverdue scans in-progress workflows and emits at most one task_overdue
// notification per task and due date. It returns how many notifications were emitted.
func (r *Reminders) NotifyOverdue(ctx context.Context, now time.Time) (int, error) {
	workflows, err := r.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		r.metrics.ReminderRuns.WithLabelValues("error").Inc()

		return 0, fmt.Errorf("failed to list workflows: %w", err)
	}

	emitted := 0

	for _, w := range workflows {
		if w.Status != models.WorkflowStatusInProgress {
			continue
		}

		for _, task := range w.Tasks() {
			if task.IsDone() || task.DueDate == nil || !task.DueDate.Before(now) {
				continue
			}

			sent, err := r.remind(ctx, w, task)
			if err != nil {
				r.metrics.ReminderRuns.WithLabelValues("error").Inc()

				return emitted, err
			}

			if sent {
				emitted++
			}
		}
	}

	r.metrics.ReminderRuns.WithLabelValues("ok").Inc()

	if emitted > 0 {
		r.logger.InfoContext(ctx, "Overdue reminders emitted", "count", emitted)
	}

	return emitted, nil
}

func (r *Reminders) remind(ctx context.Context, w *models.Workflow, task *models.Task) (bool, error) {
	key := OverdueKey(w.ID, task.ID, *task.DueDate)

	existing, err := r.persistence.NotificationRepository().List(ctx, persistence.NotificationFilter{
		Kind:      models.NotificationTaskOverdue,
		DedupeKey: key,
		Limit:     1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check reminders: %w", err)
	}

	if len(existing) > 0 {
		return false, nil
	}

	var recipientID string
	if task.Assignee != nil {
		recipientID = task.Assignee.ID
	}

	_, err = r.notifications.emit(ctx, &models.Notification{
		Kind:        models.NotificationTaskOverdue,
		Message:     fmt.Sprintf("%s for %s was due %s", task.Name, w.Employee.Name, task.DueDate.UTC().Format(time.DateOnly)),
		WorkflowID:  w.ID,
		TaskID:      task.ID,
		RecipientID: recipientID,
		DedupeKey:   key,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
