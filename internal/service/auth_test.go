package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mailroom/internal/model"
	repoMocks "mailroom/internal/repository/mocks"
	"mailroom/internal/security"
)

func newTestAuth(t *testing.T, repo *repoMocks.MockProfileRepository) (*authService, *fakeActivity) {
	t.Helper()
	tokens, err := security.NewTokenService("test-secret", "mailroom", time.Hour)
	require.NoError(t, err)
	act := &fakeActivity{}
	svc := NewAuthService(repo, security.NewBcryptHasher(bcrypt.MinCost), tokens, act).(*authService)
	svc.now = fixedClock
	return svc, act
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         RegisterInput
		setupMocks func(m *repoMocks.MockProfileRepository)
		wantErr    error
		wantField  string
	}{
		{
			name: "happy path",
			in:   RegisterInput{Email: " Ada@Example.com ", Password: "correct horse", FullName: "Ada"},
			setupMocks: func(m *repoMocks.MockProfileRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(p *model.Profile) bool {
					return p.Email == "ada@example.com" &&
						p.Role == model.RoleUser &&
						p.KYCStatus == model.KYCNotStarted &&
						p.PasswordHash != "correct horse" &&
						p.CreatedAt.Equal(fixedNow)
				})).Return(&model.Profile{ID: "u1", Email: "ada@example.com", Role: model.RoleUser}, nil)
			},
		},
		{
			name:       "invalid email",
			in:         RegisterInput{Email: "not-an-email", Password: "correct horse"},
			setupMocks: func(m *repoMocks.MockProfileRepository) {},
			wantField:  "email",
		},
		{
			name:       "display name form rejected",
			in:         RegisterInput{Email: "Ada <ada@example.com>", Password: "correct horse"},
			setupMocks: func(m *repoMocks.MockProfileRepository) {},
			wantField:  "email",
		},
		{
			name:       "short password",
			in:         RegisterInput{Email: "ada@example.com", Password: "short"},
			setupMocks: func(m *repoMocks.MockProfileRepository) {},
			wantField:  "password",
		},
		{
			name: "duplicate email",
			in:   RegisterInput{Email: "ada@example.com", Password: "correct horse"},
			setupMocks: func(m *repoMocks.MockProfileRepository) {
				m.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23505"})
			},
			wantErr: ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockProfileRepository)
			tt.setupMocks(repo)
			svc, act := newTestAuth(t, repo)

			p, err := svc.Register(ctx, tt.in, "10.0.0.1")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantField != "":
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantField, ve.Field)
			default:
				require.NoError(t, err)
				assert.Equal(t, "u1", p.ID)
				assert.Equal(t, []string{"auth.register"}, act.actions)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := security.NewBcryptHasher(bcrypt.MinCost).Hash("correct horse")
	require.NoError(t, err)
	profile := &model.Profile{ID: "u1", Email: "ada@example.com", PasswordHash: hash, Role: model.RoleUser}

	t.Run("happy path", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(profile, nil)
		svc, act := newTestAuth(t, repo)

		res, err := svc.Login(ctx, "ada@example.com", "correct horse", "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "u1", res.Profile.ID)
		assert.Equal(t, []string{"auth.login"}, act.actions)

		claims, err := svc.tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(profile, nil)
		svc, _ := newTestAuth(t, repo)

		_, err := svc.Login(ctx, "ada@example.com", "wrong password", "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, sql.ErrNoRows)
		svc, _ := newTestAuth(t, repo)

		_, err := svc.Login(ctx, "ghost@example.com", "whatever1", "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("repository failure is not unauthorized", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(nil, errors.New("db down"))
		svc, _ := newTestAuth(t, repo)

		_, err := svc.Login(ctx, "ada@example.com", "correct horse", "")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("role is read from the profile", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		svc, _ := newTestAuth(t, repo)
		token, _, err := svc.tokens.Sign("u1", string(model.RoleAdmin), "ada@example.com")
		require.NoError(t, err)
		repo.On("FindByID", ctx, "u1").Return(&model.Profile{ID: "u1", Role: model.RoleUser}, nil)

		actor, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, Actor{ID: "u1", Role: model.RoleUser}, actor)
	})

	t.Run("deleted profile", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		svc, _ := newTestAuth(t, repo)
		token, _, err := svc.tokens.Sign("u1", string(model.RoleUser), "ada@example.com")
		require.NoError(t, err)
		repo.On("FindByID", ctx, "u1").Return(nil, sql.ErrNoRows)

		_, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _ := newTestAuth(t, new(repoMocks.MockProfileRepository))
		_, err := svc.Authenticate(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when missing", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		repo.On("FindByEmail", ctx, "root@example.com").Return(nil, sql.ErrNoRows)
		repo.On("Create", ctx, mock.MatchedBy(func(p *model.Profile) bool {
			return p.Role == model.RoleAdmin && p.Email == "root@example.com"
		})).Return(&model.Profile{ID: "a1", Role: model.RoleAdmin}, nil)
		svc, act := newTestAuth(t, repo)

		require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "bootstrap-pass"))
		assert.Equal(t, []string{"auth.bootstrap_admin"}, act.actions)
		repo.AssertExpectations(t)
	})

	t.Run("existing account untouched", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		repo.On("FindByEmail", ctx, "root@example.com").Return(&model.Profile{ID: "a1"}, nil)
		svc, _ := newTestAuth(t, repo)

		require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "bootstrap-pass"))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		repo := new(repoMocks.MockProfileRepository)
		svc, _ := newTestAuth(t, repo)
		require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
		repo.AssertExpectations(t)
	})
}
