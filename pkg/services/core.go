package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/pathway/pkg/eventbus"
	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/metrics"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/otelhelper"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NextTaskStrategy selects which task is announced after a completion.
type NextTaskStrategy string

const (
	// NextTaskPositional announces the following task in flattened order even when it is
	// still locked by dependencies.
	NextTaskPositional NextTaskStrategy = "positional"
	// NextTaskAvailable announces the first later task that is unlocked and not done.
	NextTaskAvailable NextTaskStrategy = "available"
)

// ParseNextTaskStrategy accepts "positional" (the default for "") or "available".
func ParseNextTaskStrategy(raw string) (NextTaskStrategy, error) {
	switch NextTaskStrategy(raw) {
	case "", NextTaskPositional:
		return NextTaskPositional, nil
	case NextTaskAvailable:
		return NextTaskAvailable, nil
	default:
		return "", fmt.Errorf("%w: unknown next task strategy %q", ErrInvalidRequest, raw)
	}
}

// Options are the collaborators shared by every service. Only Persistence is required.
type Options struct {
	Persistence      persistence.Persistence
	EventBus         eventbus.EventBus
	Logger           *slog.Logger
	Tracer           trace.Tracer
	Metrics          *metrics.Metrics
	NextTaskStrategy NextTaskStrategy
	Now              func() time.Time
	NewID            func() string
}

// core holds the aggregate load/save cycle used by all services.
type core struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *metrics.Metrics
	strategy    NextTaskStrategy
	clock       func() time.Time
	newID       func() string
}

func newCore(opts Options) *core {
	c := &core{
		persistence: opts.Persistence,
		eventBus:    opts.EventBus,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
		metrics:     opts.Metrics,
		strategy:    opts.NextTaskStrategy,
		clock:       opts.Now,
		newID:       opts.NewID,
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.tracer == nil {
		c.tracer = otelhelper.NoopTracer()
	}

	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	if c.strategy == "" {
		c.strategy = NextTaskPositional
	}

	if c.clock == nil {
		c.clock = time.Now
	}

	if c.newID == nil {
		c.newID = func() string { return uuid.New().String() }
	}

	return c
}

func (c *core) now() time.Time {
	return c.clock().UTC()
}

// nolint:spancheck // callers end the span
func (c *core) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, c.tracer, name, attrs...)
}

// loadWorkflow returns ErrWorkflowNotFound instead of a nil workflow.
func (c *core) loadWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	w, err := c.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if w == nil {
		return nil, persistence.NewWorkflowError("GetByID", workflowID, ErrWorkflowNotFound)
	}

	return w, nil
}

// loadTask loads the workflow and locates one of its tasks.
func (c *core) loadTask(ctx context.Context, workflowID, taskID string) (*models.Workflow, *models.Task, error) {
	w, err := c.loadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, nil, err
	}

	task, _ := w.FindTask(taskID)
	if task == nil {
		return nil, nil, fmt.Errorf("%w: %s in workflow %s", ErrTaskNotFound, taskID, workflowID)
	}

	return w, task, nil
}

// saveWorkflow writes the aggregate and publishes a workflows.changed event.
func (c *core) saveWorkflow(ctx context.Context, w *models.Workflow, change events.ChangeKind, actorID, taskID string) error {
	err := c.persistence.WorkflowRepository().Save(ctx, w)
	if err != nil {
		if persistence.IsRevisionConflict(err) {
			c.metrics.RevisionConflicts.Inc()
		}

		return err
	}

	event := events.NewWorkflowChanged(w, change, actorID)
	event.TaskID = taskID

	c.publish(ctx, w.ID, event)

	return nil
}

// publish is fire-and-forget: failures are logged and never reach the caller.
func (c *core) publish(ctx context.Context, key string, event eventbus.Event) {
	if c.eventBus == nil {
		return
	}

	err := c.eventBus.Publish(ctx, key, event)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}

// resolveUser looks up a directory user by id, then by email.
func (c *core) resolveUser(ctx context.Context, hint string) (*models.User, error) {
	if hint == "" {
		return nil, nil
	}

	users := c.persistence.UserRepository()

	user, err := users.GetByID(ctx, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user != nil {
		return user, nil
	}

	user, err = users.GetByEmail(ctx, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
