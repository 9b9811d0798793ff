package mocks

import (
	"context"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence returns the configured repositories. Repositories left nil can be
// filled from a real backend so only the interesting one is mocked.
type MockPersistence struct {
	mock.Mock

	Workflows     persistence.WorkflowRepository
	Templates     persistence.TemplateRepository
	Accounts      persistence.AccountRepository
	Notifications persistence.NotificationRepository
	Users         persistence.UserRepository
}

func (m *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	return m.Workflows
}

func (m *MockPersistence) TemplateRepository() persistence.TemplateRepository {
	return m.Templates
}

func (m *MockPersistence) AccountRepository() persistence.AccountRepository {
	return m.Accounts
}

func (m *MockPersistence) NotificationRepository() persistence.NotificationRepository {
	return m.Notifications
}

func (m *MockPersistence) UserRepository() persistence.UserRepository {
	return m.Users
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockWorkflowRepository is a mock implementation of persistence.WorkflowRepository interface.
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	args := m.Called(ctx, workflow)

	return args.Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockWorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.WorkflowListResult), args.Error(1)
}

// MockAccountRepository is a mock implementation of persistence.AccountRepository interface.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*models.EmployeeAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.EmployeeAccount), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.EmployeeAccount, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.EmployeeAccount), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *models.EmployeeAccount) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}
