// Package file provides file-based persistence: one JSON document per record.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/pathway/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root             string
	workflowRepo     *WorkflowRepository
	templateRepo     *TemplateRepository
	accountRepo      *AccountRepository
	notificationRepo *NotificationRepository
	userRepo         *UserRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		workflowRepo:     NewWorkflowRepository(cleanRoot),
		templateRepo:     NewTemplateRepository(cleanRoot),
		accountRepo:      NewAccountRepository(cleanRoot),
		notificationRepo: NewNotificationRepository(cleanRoot),
		userRepo:         NewUserRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// WorkflowRepository returns the workflow repository implementation for file persistence.
func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) TemplateRepository() persistence.TemplateRepository {
	return fp.templateRepo
}

func (fp *Persistence) AccountRepository() persistence.AccountRepository {
	return fp.accountRepo
}

func (fp *Persistence) NotificationRepository() persistence.NotificationRepository {
	return fp.notificationRepo
}

func (fp *Persistence) UserRepository() persistence.UserRepository {
	return fp.userRepo
}
