package service

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/security"
)

const minPasswordLen = 8

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Sign(userID, role, email string) (string, time.Time, error)
	Verify(token string) (security.Claims, error)
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Profile   *model.Profile `json:"profile"`
}

// RegisterInput carries self sign-up fields.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// AuthService handles sign-up, login and token verification.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput, ip string) (*model.Profile, error)
	Login(ctx context.Context, email, password, ip string) (*LoginResult, error)
	Me(ctx context.Context, actor Actor) (*model.Profile, error)
	// Authenticate turns a bearer token into an Actor.
	Authenticate(ctx context.Context, token string) (Actor, error)
	// EnsureAdmin creates the bootstrap administrator when no account uses the email yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	profiles repository.ProfileRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	activity ActivityService
	now      clock
}

func NewAuthService(profiles repository.ProfileRepository, hasher PasswordHasher, tokens TokenIssuer, activity ActivityService) AuthService {
	return &authService{profiles: profiles, hasher: hasher, tokens: tokens, activity: activity, now: utcNow}
}

func (s *authService) Register(ctx context.Context, in RegisterInput, ip string) (*model.Profile, error) {
	p, err := newProfile(ctx, s.profiles, s.hasher, in, model.RoleUser, s.now())
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, Actor{ID: p.ID, Role: p.Role, IP: ip}, "auth.register", "profile", p.ID, nil)
	return p, nil
}

func (s *authService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	p, err := s.profiles.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, repoErr("find profile", err)
	}
	if err := s.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}

	token, exp, err := s.tokens.Sign(p.ID, string(p.Role), p.Email)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, Actor{ID: p.ID, Role: p.Role, IP: ip}, "auth.login", "profile", p.ID, nil)
	return &LoginResult{Token: token, ExpiresAt: exp, Profile: p}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*model.Profile, error) {
	p, err := s.profiles.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repoErr("find profile", err)
	}
	return p, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (Actor, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Actor{}, ErrUnauthorized
	}
	// The role is re-read so demotions take effect before the token expires.
	p, err := s.profiles.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Actor{}, ErrUnauthorized
		}
		return Actor{}, repoErr("find profile", err)
	}
	return Actor{ID: p.ID, Role: p.Role}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.profiles.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return repoErr("find profile", err)
	}
	p, err := newProfile(ctx, s.profiles, s.hasher, RegisterInput{Email: email, Password: password, FullName: "Administrator"}, model.RoleAdmin, s.now())
	if err != nil {
		return err
	}
	s.activity.Record(ctx, Actor{}, "auth.bootstrap_admin", "profile", p.ID, nil)
	return nil
}

func newProfile(ctx context.Context, repo repository.ProfileRepository, hasher PasswordHasher, in RegisterInput, role model.Role, now time.Time) (*model.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("password", "must be at least 8 characters")
	}
	if !role.Valid() {
		return nil, invalid("role", "unknown role")
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	p, err := repo.Create(ctx, &model.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		KYCStatus:    model.KYCNotStarted,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, repoErr("create profile", err)
	}
	return p, nil
}
