package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/otelhelper"
	"github.com/dukex/pathway/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
)

// Tasks progresses individual tasks. Every mutation is gated by the dependency resolver
// and refused on completed or cancelled workflows.
type Tasks struct {
	*core

	notifications *Notifications
}

// NewTasks creates a new task service.
func NewTasks(opts Options) *Tasks {
	c := newCore(opts)

	return &Tasks{core: c, notifications: &Notifications{core: c}}
}

// BoardTask is one row of the task board.
type BoardTask struct {
	*models.Task

	StageID   string   `json:"stage_id"`
	StageName string   `json:"stage_name"`
	Available bool     `json:"available"`
	BlockedBy []string `json:"blocked_by"`
}

// Board is the flattened view of a workflow with availability computed per task.
type Board struct {
	WorkflowID string                `json:"workflow_id"`
	Status     models.WorkflowStatus `json:"status"`
	Done       int                   `json:"done"`
	Total      int                   `json:"total"`
	Tasks      []BoardTask           `json:"tasks"`
}

// Board returns the flattened task list of a workflow.
func (t *Tasks) Board(ctx context.Context, workflowID string) (*Board, error) {
	w, err := t.loadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	done, total := workflow.Progress(w)

	board := &Board{
		WorkflowID: w.ID,
		Status:     w.Status,
		Done:       done,
		Total:      total,
		Tasks:      make([]BoardTask, 0, total),
	}

	for _, task := range workflow.FlattenTasks(w) {
		_, stage := w.FindTask(task.ID)

		blocked := workflow.BlockingDependencies(w, task.ID)
		if blocked == nil {
			blocked = []string{}
		}

		board.Tasks = append(board.Tasks, BoardTask{
			Task:      task,
			StageID:   stage.ID,
			StageName: stage.Name,
			Available: workflow.IsAvailable(w, task.ID),
			BlockedBy: blocked,
		})
	}

	return board, nil
}

// UpdateStatus moves a task to a new status. Moving a locked task to in_progress or done
// returns ErrTaskLocked. Completing a task announces the next one according to the
// configured NextTaskStrategy.
func (t *Tasks) UpdateStatus(ctx context.Context, workflowID, taskID string, status models.TaskStatus, actorID string) (result *models.Task, err error) {
	ctx, span := t.startSpan(ctx, "tasks.update_status",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.TaskIDKey, taskID),
		attribute.String(otelhelper.TaskStatusKey, string(status)),
	)
	defer otelhelper.End(span, &err)

	canonical, ok := models.NormalizeTaskStatus(string(status))
	if !ok {
		return nil, NewValidationError("UpdateStatus", CodeInvalidStatus,
			fmt.Sprintf("invalid task status '%s'", status), ErrInvalidStatus)
	}

	w, task, err := t.loadMutableTask(ctx, "UpdateStatus", workflowID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == canonical {
		return task, nil
	}

	if canonical == models.TaskStatusInProgress || canonical == models.TaskStatusDone {
		if blocked := workflow.BlockingDependencies(w, task.ID); len(blocked) > 0 {
			return nil, NewConflictError("UpdateStatus", CodeTaskLocked,
				fmt.Sprintf("task %s is waiting on %s", task.ID, strings.Join(blocked, ", ")), ErrTaskLocked)
		}
	}

	task.Status = canonical

	if canonical == models.TaskStatusDone {
		now := t.now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	err = t.saveWorkflow(ctx, w, events.ChangeUpdated, actorID, task.ID)
	if err != nil {
		return nil, err
	}

	t.metrics.TaskStatusChanges.WithLabelValues(string(canonical)).Inc()

	if canonical == models.TaskStatusDone {
		t.announceCompletion(ctx, w, task)
	}

	return task, nil
}

func (t *Tasks) announceCompletion(ctx context.Context, w *models.Workflow, task *models.Task) {
	t.notifications.notify(ctx,
		models.NotificationTaskCompleted,
		fmt.Sprintf("%s was completed for %s", task.Name, w.Employee.Name),
		w.ID, task.ID, w.Employee.SupervisorID,
	)

	next := t.nextTask(w, task.ID)
	if next == nil || next.IsDone() {
		return
	}

	var recipientID string
	if next.Assignee != nil {
		recipientID = next.Assignee.ID
	}

	t.notifications.notify(ctx,
		models.NotificationTaskAvailable,
		fmt.Sprintf("%s is ready for %s", next.Name, w.Employee.Name),
		w.ID, next.ID, recipientID,
	)
}

func (t *Tasks) nextTask(w *models.Workflow, taskID string) *models.Task {
	if t.strategy == NextTaskAvailable {
		return workflow.NextAvailableTask(w, taskID)
	}

	return workflow.NextPositionalTask(w, taskID)
}

// Assign sets the task assignee from the user directory, matched by id or email. An
// empty userID unassigns the task.
func (t *Tasks) Assign(ctx context.Context, workflowID, taskID, userID, actorID string) (*models.Task, error) {
	w, task, err := t.loadMutableTask(ctx, "Assign", workflowID, taskID)
	if err != nil {
		return nil, err
	}

	if userID == "" {
		task.Assignee = nil

		err = t.saveWorkflow(ctx, w, events.ChangeUpdated, actorID, task.ID)
		if err != nil {
			return nil, err
		}

		return task, nil
	}

	user, err := t.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	task.Assignee = user.AsAssignee()

	err = t.saveWorkflow(ctx, w, events.ChangeUpdated, actorID, task.ID)
	if err != nil {
		return nil, err
	}

	t.notifications.notify(ctx,
		models.NotificationTaskAssigned,
		fmt.Sprintf("You were assigned %s for %s", task.Name, w.Employee.Name),
		w.ID, task.ID, user.ID,
	)

	return task, nil
}

// SetOutput stores the payload produced by the task's action, such as uploaded documents.
func (t *Tasks) SetOutput(ctx context.Context, workflowID, taskID string, output *models.TaskOutput, actorID string) (*models.Task, error) {
	w, task, err := t.loadMutableTask(ctx, "SetOutput", workflowID, taskID)
	if err != nil {
		return nil, err
	}

	task.OutputValue = output

	err = t.saveWorkflow(ctx, w, events.ChangeUpdated, actorID, task.ID)
	if err != nil {
		return nil, err
	}

	return task, nil
}

// SetDueDate sets or clears (nil) the task due date used by overdue reminders.
func (t *Tasks) SetDueDate(ctx context.Context, workflowID, taskID string, dueDate *time.Time, actorID string) (*models.Task, error) {
	w, task, err := t.loadMutableTask(ctx, "SetDueDate", workflowID, taskID)
	if err != nil {
		return nil, err
	}

	if dueDate != nil {
		utc := dueDate.UTC()
		dueDate = &utc
	}

	task.DueDate = dueDate

	err = t.saveWorkflow(ctx, w, events.ChangeUpdated, actorID, task.ID)
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (t *Tasks) loadMutableTask(ctx context.Context, op, workflowID, taskID string) (*models.Workflow, *models.Task, error) {
	w, task, err := t.loadTask(ctx, workflowID, taskID)
	if err != nil {
		return nil, nil, err
	}

	if err := requireInProgress(op, w); err != nil {
		return nil, nil, err
	}

	return w, task, nil
}
