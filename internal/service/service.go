// Package service holds the mailroom use cases. Services enforce business rules
// and authorization on top of the repositories and never talk HTTP.
package service

import (
	"time"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role model.Role
	IP   string
}

// Is reports whether the actor has at least the given role.
func (a Actor) Is(r model.Role) bool {
	return a.Role.AtLeast(r)
}

// ListResult is the service-level DTO for paginated listings.
type ListResult[T any] struct {
	Items  []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

func listResult[T any](res *repository.PageResult[T], pq repository.PageQuery) *ListResult[T] {
	return &ListResult[T]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}
}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
