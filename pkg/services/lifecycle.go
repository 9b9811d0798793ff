package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/otelhelper"
	"github.com/dukex/pathway/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
)

// Lifecycle drives a workflow from in_progress to completed or cancelled. It never
// transitions on its own; callers decide when to complete.
type Lifecycle struct {
	*core

	accounts      *Accounts
	notifications *Notifications
}

// NewLifecycle creates a new lifecycle controller.
func NewLifecycle(opts Options) *Lifecycle {
	c := newCore(opts)

	return &Lifecycle{
		core:          c,
		accounts:      &Accounts{core: c},
		notifications: &Notifications{core: c},
	}
}

// Complete finalizes an in-progress workflow and applies the account side effect:
// onboarding provisions (or merges) the employee account, offboarding deactivates it.
// Completing a workflow that is not in progress returns ErrInvalidStateTransition and
// emits nothing.
func (l *Lifecycle) Complete(ctx context.Context, workflowID, actorID string) (result *models.Workflow, err error) {
	ctx, span := l.startSpan(ctx, "lifecycle.complete",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.ActorIDKey, actorID),
	)
	defer otelhelper.End(span, &err)

	w, err := l.loadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return l.complete(ctx, w, actorID)
}

// CompleteChecked refuses to complete while tasks are unfinished unless force is set.
func (l *Lifecycle) CompleteChecked(ctx context.Context, workflowID, actorID string, force bool) (*models.Workflow, error) {
	if !force {
		w, err := l.loadWorkflow(ctx, workflowID)
		if err != nil {
			return nil, err
		}

		if w.Status == models.WorkflowStatusInProgress && !workflow.AllTasksDone(w) {
			done, total := workflow.Progress(w)

			return nil, NewConflictError(
				"CompleteChecked",
				CodeTasksIncomplete,
				fmt.Sprintf("%d of %d tasks done", done, total),
				ErrTasksIncomplete,
			)
		}
	}

	return l.Complete(ctx, workflowID, actorID)
}

func (l *Lifecycle) complete(ctx context.Context, w *models.Workflow, actorID string) (*models.Workflow, error) {
	if err := requireInProgress("Complete", w); err != nil {
		return nil, err
	}

	now := l.now()

	w.Status = models.WorkflowStatusCompleted
	w.CompletedAt = &now
	w.CompletedBy = actorID

	err := l.saveWorkflow(ctx, w, events.ChangeCompleted, actorID, "")
	if err != nil {
		return nil, err
	}

	l.metrics.WorkflowTransitions.WithLabelValues(string(w.Type), string(w.Status)).Inc()
	l.logger.InfoContext(ctx, "Workflow completed", "workflow_id", w.ID, "type", w.Type, "actor_id", actorID)

	_, err = l.applyAccountEffect(ctx, w)
	if err != nil {
		l.logger.ErrorContext(ctx, "Employee account update failed", "workflow_id", w.ID, "type", w.Type, "error", err)

		return w, fmt.Errorf("workflow %s completed but the employee account was not updated: %w", w.ID, err)
	}

	l.notifications.notify(ctx,
		models.NotificationWorkflowCompleted,
		fmt.Sprintf("%s for %s has been completed", w.Type.Title(), w.Employee.Name),
		w.ID, "", w.Employee.SupervisorID,
	)

	return w, nil
}

// SyncAccount re-applies the account effect of a completed workflow, repairing accounts
// that Complete could not update. Provisioning merges by email, so repeated calls are safe.
func (l *Lifecycle) SyncAccount(ctx context.Context, workflowID string) (result *models.EmployeeAccount, err error) {
	ctx, span := l.startSpan(ctx, "lifecycle.sync_account",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
	)
	defer otelhelper.End(span, &err)

	w, err := l.loadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if w.Status != models.WorkflowStatusCompleted {
		return nil, NewConflictError(
			"SyncAccount",
			CodeWorkflowNotCompleted,
			fmt.Sprintf("workflow %s is %s", w.ID, w.Status),
			ErrInvalidStateTransition,
		)
	}

	account, err := l.applyAccountEffect(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("failed to sync account of workflow %s: %w", w.ID, err)
	}

	l.logger.InfoContext(ctx, "Employee account synced", "workflow_id", w.ID, "type", w.Type)

	return account, nil
}

// applyAccountEffect provisions for onboarding and deactivates for offboarding.
func (l *Lifecycle) applyAccountEffect(ctx context.Context, w *models.Workflow) (*models.EmployeeAccount, error) {
	switch w.Type {
	case models.WorkflowTypeOnboarding:
		return l.accounts.provision(ctx, w)
	case models.WorkflowTypeOffboarding:
		return l.accounts.deactivate(ctx, w)
	default:
		return nil, nil
	}
}

// Cancel stops an in-progress workflow for good. A blank reason is rejected.
func (l *Lifecycle) Cancel(ctx context.Context, workflowID, reason, actorID string) (result *models.Workflow, err error) {
	ctx, span := l.startSpan(ctx, "lifecycle.cancel",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.ActorIDKey, actorID),
	)
	defer otelhelper.End(span, &err)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewConflictError(
			"Cancel",
			CodeCancellationReasonRequired,
			"a cancellation reason is required",
			ErrInvalidStateTransition,
		)
	}

	w, err := l.loadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := requireInProgress("Cancel", w); err != nil {
		return nil, err
	}

	w.Status = models.WorkflowStatusCancelled
	w.Cancellation = &models.Cancellation{
		Reason:      reason,
		CancelledBy: actorID,
		CancelledAt: l.now(),
	}

	err = l.saveWorkflow(ctx, w, events.ChangeCancelled, actorID, "")
	if err != nil {
		return nil, err
	}

	l.metrics.WorkflowTransitions.WithLabelValues(string(w.Type), string(w.Status)).Inc()
	l.logger.InfoContext(ctx, "Workflow cancelled", "workflow_id", w.ID, "actor_id", actorID)

	l.notifications.notify(ctx,
		models.NotificationWorkflowCancelled,
		fmt.Sprintf("%s for %s was cancelled: %s", w.Type.Title(), w.Employee.Name, reason),
		w.ID, "", w.Employee.SupervisorID,
	)

	return w, nil
}

func requireInProgress(op string, w *models.Workflow) error {
	if w.Status == models.WorkflowStatusInProgress {
		return nil
	}

	return NewConflictError(
		op,
		CodeWorkflowNotInProgress,
		fmt.Sprintf("workflow %s is %s", w.ID, w.Status),
		ErrInvalidStateTransition,
	)
}
