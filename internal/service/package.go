package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"mailroom/internal/database"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// PackageInput carries the editable fields of a plan.
type PackageInput struct {
	Name            string
	Description     string
	PriceCents      int64
	Interval        model.BillingInterval
	MonthlyScans    int
	MonthlyForwards int
	Active          bool
}

func (in *PackageInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if in.PriceCents < 0 {
		return invalid("price_cents", "must not be negative")
	}
	if in.Interval == "" {
		in.Interval = model.IntervalMonthly
	}
	if !in.Interval.Valid() {
		return invalid("interval", "must be MONTHLY or YEARLY")
	}
	if in.MonthlyScans < 0 || in.MonthlyForwards < 0 {
		return invalid("quota", "monthly quotas must not be negative")
	}
	return nil
}

// PackageService manages subscription plans.
type PackageService interface {
	Create(ctx context.Context, actor Actor, in PackageInput) (*model.Package, error)
	Update(ctx context.Context, actor Actor, id string, in PackageInput) (*model.Package, error)
	// Delete refuses plans that still have ACTIVE subscribers.
	Delete(ctx context.Context, actor Actor, id string) error
	List(ctx context.Context, activeOnly bool) ([]model.Package, error)
	Get(ctx context.Context, id string) (*model.Package, error)
}

type packageService struct {
	repo     repository.PackageRepository
	activity ActivityService
	now      clock
}

func NewPackageService(repo repository.PackageRepository, activity ActivityService) PackageService {
	return &packageService{repo: repo, activity: activity, now: utcNow}
}

func (s *packageService) Create(ctx context.Context, actor Actor, in PackageInput) (*model.Package, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p, err := s.repo.Create(ctx, &model.Package{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     strings.TrimSpace(in.Description),
		PriceCents:      in.PriceCents,
		Interval:        in.Interval,
		MonthlyScans:    in.MonthlyScans,
		MonthlyForwards: in.MonthlyForwards,
		Active:          in.Active,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, repoErr("create package", err)
	}
	s.activity.Record(ctx, actor, "package.create", "package", p.ID, map[string]any{"name": p.Name})
	return p, nil
}

func (s *packageService) Update(ctx context.Context, actor Actor, id string, in PackageInput) (*model.Package, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find package", err)
	}
	current.Name = in.Name
	current.Description = strings.TrimSpace(in.Description)
	current.PriceCents = in.PriceCents
	current.Interval = in.Interval
	current.MonthlyScans = in.MonthlyScans
	current.MonthlyForwards = in.MonthlyForwards
	current.Active = in.Active
	current.UpdatedAt = s.now()

	p, err := s.repo.Update(ctx, current)
	if err != nil {
		return nil, repoErr("update package", err)
	}
	s.activity.Record(ctx, actor, "package.update", "package", p.ID, map[string]any{"name": p.Name, "active": p.Active})
	return p, nil
}

func (s *packageService) Delete(ctx context.Context, actor Actor, id string) error {
	n, err := s.repo.CountActiveSubscriptions(ctx, id)
	if err != nil {
		return repoErr("count subscriptions", err)
	}
	if n > 0 {
		return ErrConflict
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		// Lapsed subscriptions still reference the plan.
		if database.IsForeignKeyViolation(err) {
			return ErrConflict
		}
		return repoErr("delete package", err)
	}
	s.activity.Record(ctx, actor, "package.delete", "package", id, nil)
	return nil
}

func (s *packageService) List(ctx context.Context, activeOnly bool) ([]model.Package, error) {
	ps, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, repoErr("list packages", err)
	}
	return ps, nil
}

func (s *packageService) Get(ctx context.Context, id string) (*model.Package, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find package", err)
	}
	return p, nil
}
