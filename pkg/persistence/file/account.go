package file

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// AccountRepository handles employee account file operations.
type AccountRepository struct {
	mu       sync.Mutex // Serialises the email uniqueness check with the write
	accounts *collection[models.EmployeeAccount]
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(root string) *AccountRepository {
	return &AccountRepository{accounts: newCollection[models.EmployeeAccount](root, "accounts")}
}

// GetAll returns every account sorted by name.
func (ar *AccountRepository) GetAll(_ context.Context) ([]*models.EmployeeAccount, error) {
	accounts, err := ar.accounts.all()
	if err != nil {
		return nil, err
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return accounts, nil
}

// GetByEmail matches the email case-insensitively.
func (ar *AccountRepository) GetByEmail(_ context.Context, email string) (*models.EmployeeAccount, error) {
	accounts, err := ar.accounts.all()
	if err != nil {
		return nil, err
	}

	return findAccount(accounts, email), nil
}

func (ar *AccountRepository) Save(_ context.Context, account *models.EmployeeAccount) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	accounts, err := ar.accounts.all()
	if err != nil {
		return err
	}

	if existing := findAccount(accounts, account.Email); existing != nil && existing.ID != account.ID {
		return persistence.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	account.UpdatedAt = now

	return ar.accounts.write(account.ID, account)
}

func findAccount(accounts []*models.EmployeeAccount, email string) *models.EmployeeAccount {
	normalized := models.NormalizeEmail(email)

	for _, account := range accounts {
		if models.NormalizeEmail(account.Email) == normalized {
			return account
		}
	}

	return nil
}
