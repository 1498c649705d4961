package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput, ip string) (*model.Profile, error) {
	args := m.Called(ctx, in, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, actor service.Actor) (*model.Profile, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (service.Actor, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(service.Actor), args.Error(1)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, actor service.Actor, in service.CreateUserInput) (*model.Profile, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, role model.Role, limit, offset int) (*service.ListResult[model.Profile], error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Profile]), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, actor service.Actor, id string, role model.Role) (*model.Profile, error) {
	args := m.Called(ctx, actor, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor service.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, actor service.Actor, action, entityType, entityID string, details any) {
	m.Called(ctx, actor, action, entityType, entityID, details)
}

func (m *MockActivityService) List(ctx context.Context, f repository.ActivityFilter, limit, offset int) (*service.ListResult[model.ActivityLog], error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.ActivityLog]), args.Error(1)
}

type MockAllowedIPService struct {
	mock.Mock
}

func (m *MockAllowedIPService) Add(ctx context.Context, actor service.Actor, cidr, label string) (*model.AllowedIP, error) {
	args := m.Called(ctx, actor, cidr, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AllowedIP), args.Error(1)
}

func (m *MockAllowedIPService) List(ctx context.Context) ([]model.AllowedIP, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AllowedIP), args.Error(1)
}

func (m *MockAllowedIPService) Delete(ctx context.Context, actor service.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockAllowedIPService) Allowed(ctx context.Context, ip string) (bool, error) {
	args := m.Called(ctx, ip)
	return args.Bool(0), args.Error(1)
}
