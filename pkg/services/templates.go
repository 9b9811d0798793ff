package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/otelhelper"
	"github.com/dukex/pathway/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed schemas/template.schema.json
var templateSchema []byte

var templateSchemaLoader = gojsonschema.NewBytesLoader(templateSchema)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Templates manages workflow templates and instantiates them into workflows.
type Templates struct {
	*core

	notifications *Notifications
}

// NewTemplates creates a new template service.
func NewTemplates(opts Options) *Templates {
	c := newCore(opts)

	return &Templates{core: c, notifications: &Notifications{core: c}}
}

// InstantiateRequest carries the per-instance overrides applied to a template.
type InstantiateRequest struct {
	ClientID          string                     `json:"client_id"`
	Employee          models.EmployeeSnapshot    `json:"employee"`
	Offboarding       *models.OffboardingDetails `json:"offboarding,omitempty"`
	RegenerateTaskIDs bool                       `json:"regenerate_task_ids"`
}

// List returns every template sorted by name.
func (s *Templates) List(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	templates, err := s.persistence.TemplateRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}

// FetchByID returns ErrTemplateNotFound for unknown ids.
func (s *Templates) FetchByID(ctx context.Context, templateID string) (*models.WorkflowTemplate, error) {
	tpl, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	return tpl, nil
}

// Create validates the template, including dependency cycles, and stores it.
func (s *Templates) Create(ctx context.Context, tpl *models.WorkflowTemplate) (*models.WorkflowTemplate, error) {
	if err := workflow.ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	if tpl.ID == "" {
		tpl.ID = s.newID()
	}

	tpl.CreatedAt = s.now()
	tpl.UpdatedAt = tpl.CreatedAt

	err := s.persistence.TemplateRepository().Save(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.InfoContext(ctx, "Template created", "template_id", tpl.ID, "type", tpl.Type)

	return tpl, nil
}

// Update replaces an existing template. Workflows already instantiated are unaffected.
func (s *Templates) Update(ctx context.Context, templateID string, tpl *models.WorkflowTemplate) (*models.WorkflowTemplate, error) {
	existing, err := s.FetchByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	tpl.ID = existing.ID

	if err := workflow.ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	tpl.CreatedAt = existing.CreatedAt
	tpl.UpdatedAt = s.now()

	err = s.persistence.TemplateRepository().Save(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return tpl, nil
}

// Delete removes a template.
func (s *Templates) Delete(ctx context.Context, templateID string) error {
	if _, err := s.FetchByID(ctx, templateID); err != nil {
		return err
	}

	err := s.persistence.TemplateRepository().Delete(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	return nil
}

// Import checks a raw JSON document against the template schema before the regular
// validation, so malformed documents report every schema violation at once.
func (s *Templates) Import(ctx context.Context, document []byte) (*models.WorkflowTemplate, error) {
	result, err := gojsonschema.Validate(templateSchemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, NewValidationError("Import", "INVALID_JSON", "template document is not valid JSON", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}

	if !result.Valid() {
		var problems []string
		for _, resultError := range result.Errors() {
			problems = append(problems, resultError.String())
		}

		return nil, NewValidationError("Import", "SCHEMA_VIOLATION",
			"template schema validation failed: "+strings.Join(problems, "; "), ErrInvalidRequest)
	}

	var tpl models.WorkflowTemplate

	err = json.Unmarshal(document, &tpl)
	if err != nil {
		return nil, NewValidationError("Import", "INVALID_JSON", err.Error(), ErrInvalidRequest)
	}

	// An imported document always becomes a new template; Update replaces existing ones.
	tpl.ID = ""

	return s.Create(ctx, &tpl)
}

// Instantiate creates a new in-progress workflow from a template, persists it and
// notifies the assignees of its tasks.
func (s *Templates) Instantiate(ctx context.Context, templateID string, req InstantiateRequest, actorID string) (result *models.Workflow, err error) {
	ctx, span := s.startSpan(ctx, "templates.instantiate",
		attribute.String(otelhelper.TemplateIDKey, templateID),
		attribute.String(otelhelper.ActorIDKey, actorID),
	)
	defer otelhelper.End(span, &err)

	err = validate.Struct(req)
	if err != nil {
		return nil, NewValidationError("Instantiate", "INVALID_EMPLOYEE", err.Error(), ErrInvalidRequest)
	}

	tpl, err := s.FetchByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var resolveErr error

	w, err := workflow.Instantiate(tpl, workflow.InstantiateOptions{
		ClientID:          req.ClientID,
		Employee:          req.Employee,
		Offboarding:       req.Offboarding,
		RegenerateTaskIDs: req.RegenerateTaskIDs,
		Now:               s.now(),
		NewID:             s.newID,
		ResolveAssignee: func(hint string) *models.Assignee {
			user, err := s.resolveUser(ctx, hint)
			if err != nil {
				resolveErr = err

				return nil
			}

			if user == nil {
				s.logger.WarnContext(ctx, "Default assignee not found", "template_id", tpl.ID, "hint", hint)

				return nil
			}

			return user.AsAssignee()
		},
	})
	if err != nil {
		return nil, err
	}

	if resolveErr != nil {
		return nil, resolveErr
	}

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowIDKey, w.ID),
		attribute.String(otelhelper.WorkflowTypeKey, string(w.Type)),
	)

	err = s.saveWorkflow(ctx, w, events.ChangeCreated, actorID, "")
	if err != nil {
		return nil, err
	}

	s.metrics.WorkflowsCreated.WithLabelValues(string(w.Type), "template").Inc()
	s.logger.InfoContext(ctx, "Workflow instantiated", "workflow_id", w.ID, "template_id", tpl.ID, "type", w.Type)

	for _, task := range workflow.FlattenTasks(w) {
		if task.Assignee == nil {
			continue
		}

		s.notifications.notify(ctx,
			models.NotificationTaskAssigned,
			fmt.Sprintf("You were assigned %s for %s", task.Name, w.Employee.Name),
			w.ID, task.ID, task.Assignee.ID,
		)
	}

	return w, nil
}
