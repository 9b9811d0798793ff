package file

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// UserRepository handles user directory file operations.
type UserRepository struct {
	mu    sync.Mutex
	users *collection[models.User]
}

// NewUserRepository creates a new user repository.
func NewUserRepository(root string) *UserRepository {
	return &UserRepository{users: newCollection[models.User](root, "users")}
}

func (ur *UserRepository) GetAll(_ context.Context) ([]*models.User, error) {
	users, err := ur.users.all()
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})

	return users, nil
}

func (ur *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return ur.users.read(id)
}

func (ur *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	users, err := ur.users.all()
	if err != nil {
		return nil, err
	}

	return findUser(users, email), nil
}

func (ur *UserRepository) Save(_ context.Context, user *models.User) error {
	ur.mu.Lock()
	defer ur.mu.Unlock()

	users, err := ur.users.all()
	if err != nil {
		return err
	}

	if existing := findUser(users, user.Email); existing != nil && existing.ID != user.ID {
		return persistence.ErrDuplicateEmail
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	return ur.users.write(user.ID, user)
}

func findUser(users []*models.User, email string) *models.User {
	normalized := models.NormalizeEmail(email)

	for _, user := range users {
		if models.NormalizeEmail(user.Email) == normalized {
			return user
		}
	}

	return nil
}
