package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, role model.Role, pq repository.PageQuery) (*repository.PageResult[model.Profile], error) {
	args := m.Called(ctx, role, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Profile]), args.Error(1)
}

func (m *MockProfileRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockKYCRepository struct {
	mock.Mock
}

func (m *MockKYCRepository) Create(ctx context.Context, v *model.KYCVerification) (*model.KYCVerification, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCRepository) FindByID(ctx context.Context, id string) (*model.KYCVerification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCRepository) LatestForUser(ctx context.Context, userID string) (*model.KYCVerification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

func (m *MockKYCRepository) ListByStatus(ctx context.Context, status model.VerificationStatus, pq repository.PageQuery) (*repository.PageResult[model.KYCVerification], error) {
	args := m.Called(ctx, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.KYCVerification]), args.Error(1)
}

func (m *MockKYCRepository) Review(ctx context.Context, id string, status model.VerificationStatus, reviewerID, reason string, at time.Time) (*model.KYCVerification, error) {
	args := m.Called(ctx, id, status, reviewerID, reason, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KYCVerification), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, l *model.ActivityLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, f repository.ActivityFilter, pq repository.PageQuery) (*repository.PageResult[model.ActivityLog], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ActivityLog]), args.Error(1)
}

type MockAllowedIPRepository struct {
	mock.Mock
}

func (m *MockAllowedIPRepository) Create(ctx context.Context, ip *model.AllowedIP) (*model.AllowedIP, error) {
	args := m.Called(ctx, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AllowedIP), args.Error(1)
}

func (m *MockAllowedIPRepository) List(ctx context.Context) ([]model.AllowedIP, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AllowedIP), args.Error(1)
}

func (m *MockAllowedIPRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
