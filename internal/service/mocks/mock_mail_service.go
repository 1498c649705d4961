package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
)

type MockMailService struct {
	mock.Mock
}

func (m *MockMailService) Intake(ctx context.Context, operator service.Actor, in service.IntakeInput) (*model.MailItem, error) {
	args := m.Called(ctx, operator, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailItem), args.Error(1)
}

func (m *MockMailService) List(ctx context.Context, actor service.Actor, f repository.MailFilter, limit, offset int) (*service.ListResult[model.MailItem], error) {
	args := m.Called(ctx, actor, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.MailItem]), args.Error(1)
}

func (m *MockMailService) Get(ctx context.Context, actor service.Actor, id string) (*model.MailItem, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailItem), args.Error(1)
}

func (m *MockMailService) ScanURL(ctx context.Context, actor service.Actor, id string) (string, error) {
	args := m.Called(ctx, actor, id)
	return args.String(0), args.Error(1)
}

func (m *MockMailService) EnvelopeURL(ctx context.Context, actor service.Actor, id string) (string, error) {
	args := m.Called(ctx, actor, id)
	return args.String(0), args.Error(1)
}

type MockActionService struct {
	mock.Mock
}

func (m *MockActionService) Request(ctx context.Context, actor service.Actor, in service.RequestActionInput) (*model.MailActionRequest, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionService) Cancel(ctx context.Context, actor service.Actor, id string) (*model.MailActionRequest, error) {
	return m.transition(ctx, "Cancel", actor, id)
}

func (m *MockActionService) Approve(ctx context.Context, operator service.Actor, id string) (*model.MailActionRequest, error) {
	return m.transition(ctx, "Approve", operator, id)
}

func (m *MockActionService) Start(ctx context.Context, operator service.Actor, id string) (*model.MailActionRequest, error) {
	return m.transition(ctx, "Start", operator, id)
}

func (m *MockActionService) transition(ctx context.Context, method string, actor service.Actor, id string) (*model.MailActionRequest, error) {
	args := m.MethodCalled(method, ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionService) Reject(ctx context.Context, operator service.Actor, id, reason string) (*model.MailActionRequest, error) {
	args := m.Called(ctx, operator, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionService) Complete(ctx context.Context, operator service.Actor, id string, in service.CompleteActionInput) (*model.MailActionRequest, error) {
	args := m.Called(ctx, operator, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionService) Get(ctx context.Context, actor service.Actor, id string) (*model.MailActionRequest, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionService) List(ctx context.Context, actor service.Actor, f repository.ActionFilter, limit, offset int) (*service.ListResult[model.MailActionRequest], error) {
	args := m.Called(ctx, actor, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.MailActionRequest]), args.Error(1)
}

type MockPackageService struct {
	mock.Mock
}

func (m *MockPackageService) Create(ctx context.Context, actor service.Actor, in service.PackageInput) (*model.Package, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageService) Update(ctx context.Context, actor service.Actor, id string, in service.PackageInput) (*model.Package, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageService) Delete(ctx context.Context, actor service.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockPackageService) List(ctx context.Context, activeOnly bool) ([]model.Package, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Package), args.Error(1)
}

func (m *MockPackageService) Get(ctx context.Context, id string) (*model.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) HandleWebhook(ctx context.Context, signature string, body []byte) (*model.Subscription, error) {
	args := m.Called(ctx, signature, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Mine(ctx context.Context, actor service.Actor) (*model.Subscription, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) List(ctx context.Context, status model.SubscriptionStatus, limit, offset int) (*service.ListResult[model.Subscription], error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Subscription]), args.Error(1)
}

func (m *MockSubscriptionService) ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error) {
	args := m.Called(ctx, grace)
	return args.Get(0).(int64), args.Error(1)
}
