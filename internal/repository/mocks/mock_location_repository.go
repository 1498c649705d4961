package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) CreateWithClusters(ctx context.Context, loc *model.Location, clusterNames []string) (*model.Location, error) {
	args := m.Called(ctx, loc, clusterNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockLocationRepository) List(ctx context.Context) ([]model.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockLocationRepository) AddCluster(ctx context.Context, c *model.Cluster) (*model.Cluster, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cluster), args.Error(1)
}

func (m *MockLocationRepository) FindCluster(ctx context.Context, id string) (*model.Cluster, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cluster), args.Error(1)
}

func (m *MockLocationRepository) CountClusters(ctx context.Context, locationID string) (int, error) {
	args := m.Called(ctx, locationID)
	return args.Int(0), args.Error(1)
}

func (m *MockLocationRepository) CountMailboxes(ctx context.Context, clusterID string) (int, error) {
	args := m.Called(ctx, clusterID)
	return args.Int(0), args.Error(1)
}

func (m *MockLocationRepository) DeleteCluster(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMailboxRepository struct {
	mock.Mock
}

func (m *MockMailboxRepository) Create(ctx context.Context, mb *model.Mailbox) (*model.Mailbox, error) {
	args := m.Called(ctx, mb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) FindByID(ctx context.Context, id string) (*model.Mailbox, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) FindByUser(ctx context.Context, userID string) (*model.Mailbox, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) List(ctx context.Context, f repository.MailboxFilter, pq repository.PageQuery) (*repository.PageResult[model.Mailbox], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Mailbox]), args.Error(1)
}

func (m *MockMailboxRepository) Update(ctx context.Context, mb *model.Mailbox) (*model.Mailbox, error) {
	args := m.Called(ctx, mb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) Assign(ctx context.Context, id, userID string) (*model.Mailbox, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) Release(ctx context.Context, id string) (*model.Mailbox, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mailbox), args.Error(1)
}

func (m *MockMailboxRepository) Address(ctx context.Context, id string) (*model.MailboxAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MailboxAddress), args.Error(1)
}
