package service

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

func TestPageQuery(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		want          repository.PageQuery
	}{
		{"defaults", 0, 0, repository.PageQuery{Limit: 20, Offset: 0}},
		{"capped", 1000, 5, repository.PageQuery{Limit: 100, Offset: 5}},
		{"negative offset", 10, -3, repository.PageQuery{Limit: 10, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageQuery(tt.limit, tt.offset))
		})
	}
}

func TestRepoErr(t *testing.T) {
	assert.NoError(t, repoErr("op", nil))
	assert.ErrorIs(t, repoErr("op", sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, repoErr("op", &pgconn.PgError{Code: "23505"}), ErrConflict)

	var ve *ValidationError
	assert.ErrorAs(t, repoErr("op", &pgconn.PgError{Code: "23503"}), &ve)

	err := repoErr("list things", errors.New("boom"))
	assert.EqualError(t, err, "list things: boom")
}

func TestActorIs(t *testing.T) {
	assert.True(t, Actor{Role: model.RoleAdmin}.Is(model.RoleOperator))
	assert.False(t, Actor{Role: model.RoleUser}.Is(model.RoleOperator))
}
