package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
)

type MockKYCService struct {
	mock.Mock
}

func (m *MockKYCService) Submit(ctx context.Context, actor service.Actor, in service.SubmitKYCInput) (*model.KYCVerification, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCService) Mine(ctx context.Context, actor service.Actor) (*model.KYCVerification, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCService) ListPending(ctx context.Context, limit, offset int) (*service.ListResult[model.KYCVerification], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.KYCVerification]), args.Error(1)
}

func (m *MockKYCService) Approve(ctx context.Context, reviewer service.Actor, id string) (*model.KYCVerification, error) {
	args := m.Called(ctx, reviewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCService) Reject(ctx context.Context, reviewer service.Actor, id, reason string) (*model.KYCVerification, error) {
	args := m.Called(ctx, reviewer, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCService) DocumentURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) Create(ctx context.Context, actor service.Actor, in service.CreateLocationInput) (*model.Location, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockLocationService) List(ctx context.Context) ([]model.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Location), args.Error(1)
}

func (m *MockLocationService) Get(ctx context.Context, id string) (*model.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockLocationService) AddCluster(ctx context.Context, actor service.Actor, locationID, name string) (*model.Cluster, error) {
	args := m.Called(ctx, actor, locationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cluster), args.Error(1)
}

func (m *MockLocationService) DeleteCluster(ctx context.Context, actor service.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockMailboxService struct {
	mock.Mock
}

func (m *MockMailboxService) Create(ctx context.Context, actor service.Actor, in service.CreateMailboxInput) (*model.Mailbox, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxService) Get(ctx context.Context, id string) (*model.Mailbox, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxService) Update(ctx context.Context, actor service.Actor, id string, in service.UpdateMailboxInput) (*model.Mailbox, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxService) Assign(ctx context.Context, actor service.Actor, id, userID string) (*model.Mailbox, error) {
	args := m.Called(ctx, actor, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxService) Release(ctx context.Context, actor service.Actor, id string) (*model.Mailbox, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxService) List(ctx context.Context, f repository.MailboxFilter, limit, offset int) (*service.ListResult[model.Mailbox], error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Mailbox]), args.Error(1)
}

func (m *MockMailboxService) CheckFit(ctx context.Context, id string, item model.Dimensions) (*service.FitResult, error) {
	args := m.Called(ctx, id, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FitResult), args.Error(1)
}

func (m *MockMailboxService) Mine(ctx context.Context, actor service.Actor) (*service.MyMailbox, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MyMailbox), args.Error(1)
}
