package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

type MockMailItemRepository struct {
	mock.Mock
}

func (m *MockMailItemRepository) Create(ctx context.Context, item *model.MailItem) (*model.MailItem, error) {
	args := m.Called(ctx, item)
	if f, ok := args.Get(0).(func(context.Context, *model.MailItem) *model.MailItem); ok {
		return f(ctx, item), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailItem), args.Error(1)
}

func (m *MockMailItemRepository) FindByID(ctx context.Context, id string) (*model.MailItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailItem), args.Error(1)
}

func (m *MockMailItemRepository) List(ctx context.Context, f repository.MailFilter, pq repository.PageQuery) (*repository.PageResult[model.MailItem], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.MailItem]), args.Error(1)
}

type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) Create(ctx context.Context, r *model.MailActionRequest) (*model.MailActionRequest, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionRepository) FindByID(ctx context.Context, id string) (*model.MailActionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionRepository) HasActionable(ctx context.Context, mailItemID string) (bool, error) {
	args := m.Called(ctx, mailItemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockActionRepository) List(ctx context.Context, f repository.ActionFilter, pq repository.PageQuery) (*repository.PageResult[model.MailActionRequest], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.MailActionRequest]), args.Error(1)
}

func (m *MockActionRepository) Transition(ctx context.Context, id string, c repository.StatusChange) (*model.MailActionRequest, error) {
	args := m.Called(ctx, id, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

func (m *MockActionRepository) Complete(ctx context.Context, id string, c repository.Completion) (*model.MailActionRequest, error) {
	args := m.Called(ctx, id, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailActionRequest), args.Error(1)
}

type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) Create(ctx context.Context, p *model.Package) (*model.Package, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageRepository) FindByID(ctx context.Context, id string) (*model.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageRepository) List(ctx context.Context, activeOnly bool) ([]model.Package, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Package), args.Error(1)
}

func (m *MockPackageRepository) Update(ctx context.Context, p *model.Package) (*model.Package, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPackageRepository) CountActiveSubscriptions(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, s *model.Subscription) (*model.Subscription, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindActiveByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) LatestByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) List(ctx context.Context, status model.SubscriptionStatus, pq repository.PageQuery) (*repository.PageResult[model.Subscription], error) {
	args := m.Called(ctx, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Subscription]), args.Error(1)
}

func (m *MockSubscriptionRepository) ExpireEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
