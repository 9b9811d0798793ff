package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
)

// Accounts reads the employee directory and applies workflow completion effects to it.
type Accounts struct {
	*core
}

// NewAccounts creates a new account service.
func NewAccounts(opts Options) *Accounts {
	return &Accounts{core: newCore(opts)}
}

// List returns every employee account.
func (a *Accounts) List(ctx context.Context) ([]*models.EmployeeAccount, error) {
	accounts, err := a.persistence.AccountRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return accounts, nil
}

// GetByEmail matches the email case-insensitively.
func (a *Accounts) GetByEmail(ctx context.Context, email string) (*models.EmployeeAccount, error) {
	account, err := a.persistence.AccountRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, email)
	}

	return account, nil
}

// provision creates or merges the account of an onboarded employee, matched by email.
func (a *Accounts) provision(ctx context.Context, w *models.Workflow) (*models.EmployeeAccount, error) {
	repo := a.persistence.AccountRepository()

	account, err := repo.GetByEmail(ctx, w.Employee.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	created := account == nil
	if created {
		account = &models.EmployeeAccount{
			ID:        a.newID(),
			Documents: []models.Document{},
		}
	}

	now := a.now()
	employee := w.Employee

	account.Name = employee.Name
	account.Email = employee.Email
	account.Position = employee.Position
	account.Department = employee.Department
	account.EmploymentType = employee.EmploymentType
	account.StartDate = employee.StartDate
	account.ClientID = w.ClientID
	account.Status = models.AccountStatusActive
	account.OnboardedAt = &now
	account.MergeDocuments(w.Documents())

	if employee.SupervisorID != "" {
		account.SupervisorID = employee.SupervisorID

		supervisor, err := a.resolveUser(ctx, employee.SupervisorID)
		if err != nil {
			return nil, err
		}

		if supervisor != nil {
			account.Supervisor = supervisor.AsAssignee()
		} else {
			a.logger.WarnContext(ctx, "Supervisor not found in user directory",
				"workflow_id", w.ID, "supervisor_id", employee.SupervisorID)
		}
	}

	err = repo.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	action := "merged"
	if created {
		action = "created"
	}

	a.metrics.AccountChanges.WithLabelValues(action).Inc()
	a.publish(ctx, account.ID, events.NewAccountChanged(account, w.ID, created))

	return account, nil
}

// deactivate marks the account of an offboarded employee inactive. A missing account is
// not an error and returns nil, nil.
func (a *Accounts) deactivate(ctx context.Context, w *models.Workflow) (*models.EmployeeAccount, error) {
	repo := a.persistence.AccountRepository()

	account, err := repo.GetByEmail(ctx, w.Employee.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account == nil {
		a.logger.InfoContext(ctx, "No account to deactivate", "workflow_id", w.ID)

		return nil, nil
	}

	documents := make([]string, 0)
	for _, document := range w.Documents() {
		documents = append(documents, document.Reference())
	}

	now := a.now()

	account.Status = models.AccountStatusInactive
	account.OffboardedAt = &now
	account.OffboardingDocuments = documents

	if w.Offboarding != nil {
		account.OffboardingType = w.Offboarding.ExitType
		account.ExitReason = w.Offboarding.ExitReason
		account.LastWorkingDay = w.Offboarding.LastWorkingDay
	}

	err = repo.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	a.metrics.AccountChanges.WithLabelValues("deactivated").Inc()
	a.publish(ctx, account.ID, events.NewAccountChanged(account, w.ID, false))

	return account, nil
}
