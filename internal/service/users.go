package service

import (
	"context"

	"go.uber.org/zap"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// CreateUserInput carries the fields an administrator sets on a new account.
type CreateUserInput struct {
	RegisterInput
	Role model.Role
}

// UserService is the administrator view of accounts.
type UserService interface {
	Create(ctx context.Context, actor Actor, in CreateUserInput) (*model.Profile, error)
	List(ctx context.Context, role model.Role, limit, offset int) (*ListResult[model.Profile], error)
	Get(ctx context.Context, id string) (*model.Profile, error)
	UpdateRole(ctx context.Context, actor Actor, id string, role model.Role) (*model.Profile, error)
	// Delete removes the account and frees its mailbox.
	Delete(ctx context.Context, actor Actor, id string) error
}

type userService struct {
	profiles repository.ProfileRepository
	hasher   PasswordHasher
	activity ActivityService
	log      *zap.Logger
	now      clock
}

func NewUserService(profiles repository.ProfileRepository, hasher PasswordHasher, activity ActivityService, log *zap.Logger) UserService {
	return &userService{profiles: profiles, hasher: hasher, activity: activity, log: log, now: utcNow}
}

func (s *userService) Create(ctx context.Context, actor Actor, in CreateUserInput) (*model.Profile, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	p, err := newProfile(ctx, s.profiles, s.hasher, in.RegisterInput, role, s.now())
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, "user.create", "profile", p.ID, map[string]any{"role": p.Role})
	return p, nil
}

func (s *userService) List(ctx context.Context, role model.Role, limit, offset int) (*ListResult[model.Profile], error) {
	if role != "" && !role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	pq := pageQuery(limit, offset)
	res, err := s.profiles.List(ctx, role, pq)
	if err != nil {
		return nil, repoErr("list profiles", err)
	}
	return listResult(res, pq), nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find profile", err)
	}
	return p, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor Actor, id string, role model.Role) (*model.Profile, error) {
	if !role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	if id == actor.ID && role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	current, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find profile", err)
	}
	if current.Role == role {
		return current, nil
	}
	if err := s.profiles.UpdateRole(ctx, id, role); err != nil {
		return nil, repoErr("update role", err)
	}
	s.activity.Record(ctx, actor, "user.update_role", "profile", id, map[string]any{"from": current.Role, "to": role})
	current.Role = role
	current.UpdatedAt = s.now()
	return current, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.ID {
		return ErrForbidden
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return repoErr("delete profile", err)
	}
	s.log.Info("user_deleted", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	s.activity.Record(ctx, actor, "user.delete", "profile", id, nil)
	return nil
}
