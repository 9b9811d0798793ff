package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
)

// Users manages the user directory used for task assignment and supervisor lookup.
type Users struct {
	*core
}

// NewUsers creates a new user directory service.
func NewUsers(opts Options) *Users {
	return &Users{core: newCore(opts)}
}

func (u *Users) List(ctx context.Context) ([]*models.User, error) {
	users, err := u.persistence.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Create adds a user. Emails are unique, compared case-insensitively.
func (u *Users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := validate.Struct(user)
	if err != nil {
		return nil, NewValidationError("CreateUser", "INVALID_USER", err.Error(), ErrInvalidRequest)
	}

	if user.ID == "" {
		user.ID = u.newID()
	}

	if user.Role == "" {
		user.Role = models.UserRoleMember
	}

	user.CreatedAt = u.now()

	err = u.persistence.UserRepository().Save(ctx, user)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicateEmail) {
			return nil, NewConflictError("CreateUser", "DUPLICATE_EMAIL",
				fmt.Sprintf("a user with email %s already exists", user.Email), err)
		}

		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

// FetchByID returns ErrUserNotFound for unknown ids.
func (u *Users) FetchByID(ctx context.Context, id string) (*models.User, error) {
	user, err := u.persistence.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}

	return user, nil
}
