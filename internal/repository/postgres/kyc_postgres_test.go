package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

var kycRowColumns = []string{
	"id", "user_id", "kind", "document_type", "document_key", "business_name", "status",
	"rejection_reason", "reviewed_by", "submitted_at", "reviewed_at",
}

func TestKYCPostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKYCPostgres(db)

	now := time.Now().UTC()
	v := &model.KYCVerification{
		ID:           "k-1",
		UserID:       "u-1",
		Kind:         model.KindKYC,
		DocumentType: "passport",
		DocumentKey:  "kyc/u-1/doc.pdf",
		SubmittedAt:  now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO kyc_verifications").
		WithArgs("k-1", "u-1", model.KindKYC, "passport", "kyc/u-1/doc.pdf", "", model.VerificationPending, now).
		WillReturnRows(sqlmock.NewRows(kycRowColumns).
			AddRow("k-1", "u-1", "KYC", "passport", "kyc/u-1/doc.pdf", "", "PENDING", "", nil, now, nil))
	mock.ExpectExec("UPDATE profiles SET kyc_status").
		WithArgs("u-1", model.KYCPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := repo.Create(context.Background(), v)

	require.NoError(t, err)
	assert.Equal(t, model.VerificationPending, out.Status)
	assert.Nil(t, out.ReviewedBy)
	assert.Nil(t, out.ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKYCPostgres_Review(t *testing.T) {
	now := time.Now().UTC()

	t.Run("approve updates profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewKYCPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE kyc_verifications (.+) WHERE id = \$1 AND status = 'PENDING'`).
			WithArgs("k-1", model.VerificationApproved, "op-1", "", now).
			WillReturnRows(sqlmock.NewRows(kycRowColumns).
				AddRow("k-1", "u-1", "KYC", "passport", "key", "", "APPROVED", "", "op-1", now, now))
		mock.ExpectExec("UPDATE profiles SET kyc_status").
			WithArgs("u-1", model.KYCApproved).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		out, err := repo.Review(context.Background(), "k-1", model.VerificationApproved, "op-1", "", now)

		require.NoError(t, err)
		assert.Equal(t, model.VerificationApproved, out.Status)
		require.NotNil(t, out.ReviewedBy)
		assert.Equal(t, "op-1", *out.ReviewedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already reviewed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewKYCPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE kyc_verifications").
			WillReturnRows(sqlmock.NewRows(kycRowColumns))
		mock.ExpectRollback()

		out, err := repo.Review(context.Background(), "k-1", model.VerificationRejected, "op-1", "blurry", now)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestKYCPostgres_ListByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKYCPostgres(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM kyc_verifications WHERE status = \$1`).
		WithArgs("PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY submitted_at ASC`).
		WithArgs("PENDING", 20, 0).
		WillReturnRows(sqlmock.NewRows(kycRowColumns).
			AddRow("k-1", "u-1", "KYB", "registry", "key", "ACME", "PENDING", "", nil, now, nil))

	res, err := repo.ListByStatus(context.Background(), model.VerificationPending, repository.PageQuery{Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "ACME", res.Items[0].BusinessName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationPostgres_CreateWithClusters_KYCFile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLocationPostgres(db)

	now := time.Now().UTC()
	loc := &model.Location{
		ID: "l-1", Name: "Downtown", AddressLine: "1 Main St", City: "Springfield",
		State: "IL", PostalCode: "62701", Country: "US", CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO locations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address_line", "city", "state", "postal_code", "country", "created_at"}).
			AddRow("l-1", "Downtown", "1 Main St", "Springfield", "IL", "62701", "US", now))
	mock.ExpectQuery("INSERT INTO clusters").
		WithArgs(sqlmock.AnyArg(), "l-1", "A", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "location_id", "name", "created_at"}).AddRow("c-1", "l-1", "A", now))
	mock.ExpectQuery("INSERT INTO clusters").
		WithArgs(sqlmock.AnyArg(), "l-1", "B", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "location_id", "name", "created_at"}).AddRow("c-2", "l-1", "B", now))
	mock.ExpectCommit()

	out, err := repo.CreateWithClusters(context.Background(), loc, []string{"A", "B"})

	require.NoError(t, err)
	require.Len(t, out.Clusters, 2)
	assert.Equal(t, "B", out.Clusters[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationPostgres_DeleteCluster_KYCFile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLocationPostgres(db)

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM clusters c").
			WithArgs("c-2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.DeleteCluster(context.Background(), "c-2"))
	})

	t.Run("last cluster is kept", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM clusters c").
			WithArgs("c-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.DeleteCluster(context.Background(), "c-1"), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
