package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"mailroom/internal/database"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// CreateLocationInput carries a new site and the names of its first clusters.
type CreateLocationInput struct {
	Name        string
	AddressLine string
	City        string
	State       string
	PostalCode  string
	Country     string
	Clusters    []string
}

// LocationService manages sites and their clusters.
type LocationService interface {
	Create(ctx context.Context, actor Actor, in CreateLocationInput) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
	Get(ctx context.Context, id string) (*model.Location, error)
	AddCluster(ctx context.Context, actor Actor, locationID, name string) (*model.Cluster, error)
	// DeleteCluster refuses the last cluster of a location and clusters that still hold mailboxes.
	DeleteCluster(ctx context.Context, actor Actor, id string) error
}

type locationService struct {
	repo     repository.LocationRepository
	activity ActivityService
	now      clock
}

func NewLocationService(repo repository.LocationRepository, activity ActivityService) LocationService {
	return &locationService{repo: repo, activity: activity, now: utcNow}
}

func (s *locationService) Create(ctx context.Context, actor Actor, in CreateLocationInput) (*model.Location, error) {
	required := map[string]string{
		"name":         in.Name,
		"address_line": in.AddressLine,
		"city":         in.City,
		"postal_code":  in.PostalCode,
		"country":      in.Country,
	}
	for _, field := range []string{"name", "address_line", "city", "postal_code", "country"} {
		if strings.TrimSpace(required[field]) == "" {
			return nil, invalid(field, "is required")
		}
	}

	names := make([]string, 0, len(in.Clusters))
	seen := make(map[string]bool, len(in.Clusters))
	for _, c := range in.Clusters {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			return nil, invalid("clusters", "cluster names must be unique")
		}
		seen[key] = true
		names = append(names, c)
	}
	if len(names) == 0 {
		return nil, invalid("clusters", "at least one cluster is required")
	}

	loc, err := s.repo.CreateWithClusters(ctx, &model.Location{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		AddressLine: strings.TrimSpace(in.AddressLine),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		PostalCode:  strings.TrimSpace(in.PostalCode),
		Country:     strings.ToUpper(strings.TrimSpace(in.Country)),
		CreatedAt:   s.now(),
	}, names)
	if err != nil {
		return nil, repoErr("create location", err)
	}
	s.activity.Record(ctx, actor, "location.create", "location", loc.ID, map[string]any{"clusters": names})
	return loc, nil
}

func (s *locationService) List(ctx context.Context) ([]model.Location, error) {
	locs, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoErr("list locations", err)
	}
	return locs, nil
}

func (s *locationService) Get(ctx context.Context, id string) (*model.Location, error) {
	loc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find location", err)
	}
	return loc, nil
}

func (s *locationService) AddCluster(ctx context.Context, actor Actor, locationID, name string) (*model.Cluster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if _, err := s.repo.FindByID(ctx, locationID); err != nil {
		return nil, repoErr("find location", err)
	}
	c, err := s.repo.AddCluster(ctx, &model.Cluster{
		ID:         uuid.NewString(),
		LocationID: locationID,
		Name:       name,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, repoErr("add cluster", err)
	}
	s.activity.Record(ctx, actor, "cluster.create", "cluster", c.ID, map[string]any{"location_id": locationID})
	return c, nil
}

func (s *locationService) DeleteCluster(ctx context.Context, actor Actor, id string) error {
	c, err := s.repo.FindCluster(ctx, id)
	if err != nil {
		return repoErr("find cluster", err)
	}
	boxes, err := s.repo.CountMailboxes(ctx, id)
	if err != nil {
		return repoErr("count mailboxes", err)
	}
	if boxes > 0 {
		return ErrConflict
	}
	n, err := s.repo.CountClusters(ctx, c.LocationID)
	if err != nil {
		return repoErr("count clusters", err)
	}
	if n <= 1 {
		return invalid("cluster", "a location must keep at least one cluster")
	}
	if err := s.repo.DeleteCluster(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastCluster):
			return invalid("cluster", "a location must keep at least one cluster")
		case database.IsForeignKeyViolation(err):
			// A mailbox was added after the count above.
			return ErrConflict
		}
		return repoErr("delete cluster", err)
	}
	s.activity.Record(ctx, actor, "cluster.delete", "cluster", id, map[string]any{"location_id": c.LocationID})
	return nil
}
