package workflow

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AssigneeResolver turns a template default_assignee hint into an assignee snapshot.
// It returns nil when the hint names nobody.
type AssigneeResolver func(hint string) *models.Assignee

// InstantiateOptions carries the per-instance overrides.
type InstantiateOptions struct {
	WorkflowID  string
	ClientID    string
	Employee    models.EmployeeSnapshot
	Offboarding *models.OffboardingDetails

	// RegenerateTaskIDs assigns fresh task ids and remaps every dependency through the
	// same substitution table. Template task ids are kept otherwise.
	RegenerateTaskIDs bool

	ResolveAssignee AssigneeResolver
	Now             time.Time
	NewID           func() string
}

// Instantiate deep-copies a template into a new in-progress workflow. The template is
// validated first and is never mutated.
func Instantiate(tpl *models.WorkflowTemplate, opts InstantiateOptions) (*models.Workflow, error) {
	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	workflowID := opts.WorkflowID
	if workflowID == "" {
		workflowID = newID()
	}

	templateStages := make([]*models.TemplateStage, 0, len(tpl.Stages))
	templateStages = append(templateStages, tpl.Stages...)
	sort.SliceStable(templateStages, func(i, j int) bool {
		return templateStages[i].Order < templateStages[j].Order
	})

	taskIDs := make(map[string]string)

	for _, stage := range templateStages {
		for _, task := range stage.Tasks {
			if opts.RegenerateTaskIDs {
				taskIDs[task.ID] = newID()
			} else {
				taskIDs[task.ID] = task.ID
			}
		}
	}

	templateID := tpl.ID

	instance := &models.Workflow{
		ID:         workflowID,
		Type:       tpl.Type,
		TemplateID: &templateID,
		ClientID:   opts.ClientID,
		Employee:   opts.Employee,
		Stages:     make([]*models.Stage, 0, len(templateStages)),
		Status:     models.WorkflowStatusInProgress,
		Revision:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if tpl.Type == models.WorkflowTypeOffboarding && opts.Offboarding != nil {
		offboarding := *opts.Offboarding
		offboarding.DocumentNames = append([]string(nil), opts.Offboarding.DocumentNames...)
		instance.Offboarding = &offboarding
	}

	for position, templateStage := range templateStages {
		stageID := templateStage.ID
		if stageID == "" {
			stageID = newID()
		}

		stage := &models.Stage{
			ID:          stageID,
			Name:        templateStage.Name,
			Description: templateStage.Description,
			Order:       position + 1,
			Tasks:       make([]*models.Task, 0, len(templateStage.Tasks)),
		}

		for _, templateTask := range templateStage.Tasks {
			stage.Tasks = append(stage.Tasks, instantiateTask(templateTask, taskIDs, opts.ResolveAssignee))
		}

		instance.Stages = append(instance.Stages, stage)
	}

	return instance, nil
}

func instantiateTask(tpl *models.TemplateTask, taskIDs map[string]string, resolve AssigneeResolver) *models.Task {
	task := &models.Task{
		ID:          taskIDs[tpl.ID],
		Name:        tpl.Name,
		Description: tpl.Description,
		Department:  tpl.Department,
		Status:      models.TaskStatusOpen,
		Priority:    tpl.Priority,
		IndentLevel: tpl.IndentLevel,
		ActionType:  tpl.ActionType,
		Comments:    []*models.Comment{},
	}

	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	for _, dependencyID := range tpl.DependentOn {
		task.DependentOn = append(task.DependentOn, taskIDs[dependencyID])
	}

	if tpl.DefaultAssignee != "" && resolve != nil {
		task.Assignee = resolve(tpl.DefaultAssignee)
	}

	return task
}

// ValidateTemplate checks field rules, task id uniqueness and the dependency graph.
// Every problem found is reported in one ValidationError.
func ValidateTemplate(tpl *models.WorkflowTemplate) error {
	result := &ValidationError{}

	if tpl == nil {
		result.add("", ErrInvalidTemplate, "template is required")

		return result
	}

	addFieldProblems(result, validate.Struct(tpl))

	var ids []string

	seen := make(map[string]bool)

	for _, stage := range tpl.Stages {
		if stage == nil {
			continue
		}

		for _, task := range stage.Tasks {
			if task == nil || task.ID == "" {
				continue
			}

			if seen[task.ID] {
				result.add("tasks["+task.ID+"].id", ErrDuplicateTaskID, fmt.Sprintf("task id %q is used more than once", task.ID))

				continue
			}

			seen[task.ID] = true
			ids = append(ids, task.ID)
		}
	}

	validateGraph(result, ids, TemplateGraph(tpl))

	return result.orNil()
}

// ValidateWorkflow applies the authoring rules to a directly submitted workflow.
func ValidateWorkflow(w *models.Workflow) error {
	result := &ValidationError{}

	if w == nil {
		result.add("", ErrInvalidTemplate, "workflow is required")

		return result
	}

	addFieldProblems(result, validate.Struct(w))

	var ids []string

	seenTasks := make(map[string]bool)
	seenOrders := make(map[int]bool)

	for _, stage := range w.Stages {
		if stage == nil {
			continue
		}

		if seenOrders[stage.Order] {
			result.add("stages["+stage.ID+"].order", ErrInvalidTemplate, fmt.Sprintf("stage order %d is used more than once", stage.Order))
		}

		seenOrders[stage.Order] = true

		for _, task := range stage.Tasks {
			if task == nil || task.ID == "" {
				continue
			}

			if seenTasks[task.ID] {
				result.add("tasks["+task.ID+"].id", ErrDuplicateTaskID, fmt.Sprintf("task id %q is used more than once", task.ID))

				continue
			}

			seenTasks[task.ID] = true
			ids = append(ids, task.ID)
		}
	}

	validateGraph(result, ids, WorkflowGraph(w))

	return result.orNil()
}

func addFieldProblems(result *ValidationError, err error) {
	if err == nil {
		return
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		result.add("", ErrInvalidTemplate, err.Error())

		return
	}

	for _, fieldError := range fieldErrors {
		detail := fmt.Sprintf("failed on the '%s' rule", fieldError.Tag())
		if fieldError.Param() != "" {
			detail = fmt.Sprintf("failed on the '%s' rule (%s)", fieldError.Tag(), fieldError.Param())
		}

		result.add(fieldError.Namespace(), ErrInvalidTemplate, detail)
	}
}
