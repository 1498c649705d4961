package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var profileRowColumns = []string{"id", "email", "password_hash", "full_name", "phone", "role", "kyc_status", "created_at", "updated_at"}

func TestProfilePostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfilePostgres(db)

	now := time.Now().UTC()
	p := &model.Profile{
		ID:           "u-1",
		Email:        "Ada@Example.com",
		PasswordHash: "hash",
		FullName:     "Ada",
		Role:         model.RoleUser,
		KYCStatus:    model.KYCNotStarted,
		CreatedAt:    now,
	}

	mock.ExpectQuery("INSERT INTO profiles").
		WithArgs(p.ID, p.Email, p.PasswordHash, p.FullName, p.Phone, p.Role, p.KYCStatus, now).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("u-1", "ada@example.com", "hash", "Ada", "", "USER", "NOT_STARTED", now, now))

	out, err := repo.Create(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", out.Email)
	assert.Equal(t, model.RoleUser, out.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfilePostgres_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE email = lower\(\$1\)`).
			WithArgs("ADA@example.com").
			WillReturnRows(sqlmock.NewRows(profileRowColumns).
				AddRow("u-1", "ada@example.com", "hash", "Ada", "", "ADMIN", "APPROVED", now, now))

		p, err := repo.FindByEmail(ctx, "ADA@example.com")

		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, p.Role)
		assert.Equal(t, model.KYCApproved, p.KYCStatus)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE email`).
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		p, err := repo.FindByEmail(ctx, "missing@example.com")

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfilePostgres_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfilePostgres(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM profiles WHERE role = \$1`).
		WithArgs("OPERATOR").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE role = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("OPERATOR", 2, 0).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("u-1", "a@example.com", "h", "A", "", "OPERATOR", "NOT_STARTED", now, now).
			AddRow("u-2", "b@example.com", "h", "B", "", "OPERATOR", "NOT_STARTED", now, now))

	res, err := repo.List(context.Background(), model.RoleOperator, repository.PageQuery{Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfilePostgres_UpdateRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfilePostgres(db)

	mock.ExpectExec("UPDATE profiles SET role").
		WithArgs("missing", model.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), "missing", model.RoleAdmin)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfilePostgres_Delete(t *testing.T) {
	t.Run("releases mailbox then deletes", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfilePostgres(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE mailboxes SET status = 'AVAILABLE', user_id = NULL").
			WithArgs("u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM profiles WHERE id = ?").
			WithArgs("u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), "u-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfilePostgres(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE mailboxes").
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM profiles").
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), "ghost")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
