package file

import (
	"context"
	"sort"
	"time"

	"github.com/dukex/pathway/pkg/models"
)

// TemplateRepository handles template file operations.
type TemplateRepository struct {
	templates *collection[models.WorkflowTemplate]
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(root string) *TemplateRepository {
	return &TemplateRepository{templates: newCollection[models.WorkflowTemplate](root, "templates")}
}

// GetAll returns every template sorted by name.
func (tr *TemplateRepository) GetAll(_ context.Context) ([]*models.WorkflowTemplate, error) {
	templates, err := tr.templates.all()
	if err != nil {
		return nil, err
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

func (tr *TemplateRepository) GetByID(_ context.Context, id string) (*models.WorkflowTemplate, error) {
	return tr.templates.read(id)
}

func (tr *TemplateRepository) Save(_ context.Context, template *models.WorkflowTemplate) error {
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	return tr.templates.write(template.ID, template)
}

func (tr *TemplateRepository) Delete(_ context.Context, id string) error {
	return tr.templates.remove(id)
}
