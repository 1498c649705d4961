package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// CreateMailboxInput carries a new mailbox.
type CreateMailboxInput struct {
	ClusterID string
	BoxNumber string
	Size      model.Dimensions
}

// UpdateMailboxInput changes only the fields that are set.
type UpdateMailboxInput struct {
	BoxNumber *string
	Size      *model.Dimensions
	Status    *model.MailboxStatus
}

// FitResult answers whether an item fits a mailbox.
type FitResult struct {
	Fits    bool             `json:"fits"`
	Mailbox model.Dimensions `json:"mailbox"`
	Item    model.Dimensions `json:"item"`
}

// MyMailbox is the renter's view of their mailbox.
type MyMailbox struct {
	model.MailboxAddress
	Lines []string `json:"address_lines"`
}

// MailboxService manages mailboxes and their rentals.
type MailboxService interface {
	Create(ctx context.Context, actor Actor, in CreateMailboxInput) (*model.Mailbox, error)
	Get(ctx context.Context, id string) (*model.Mailbox, error)
	Update(ctx context.Context, actor Actor, id string, in UpdateMailboxInput) (*model.Mailbox, error)
	Assign(ctx context.Context, actor Actor, id, userID string) (*model.Mailbox, error)
	Release(ctx context.Context, actor Actor, id string) (*model.Mailbox, error)
	List(ctx context.Context, f repository.MailboxFilter, limit, offset int) (*ListResult[model.Mailbox], error)
	CheckFit(ctx context.Context, id string, item model.Dimensions) (*FitResult, error)
	Mine(ctx context.Context, actor Actor) (*MyMailbox, error)
}

type mailboxService struct {
	repo     repository.MailboxRepository
	clusters repository.LocationRepository
	profiles repository.ProfileRepository
	activity ActivityService
	now      clock
}

func NewMailboxService(repo repository.MailboxRepository, clusters repository.LocationRepository, profiles repository.ProfileRepository, activity ActivityService) MailboxService {
	return &mailboxService{repo: repo, clusters: clusters, profiles: profiles, activity: activity, now: utcNow}
}

func (s *mailboxService) Create(ctx context.Context, actor Actor, in CreateMailboxInput) (*model.Mailbox, error) {
	box := strings.TrimSpace(in.BoxNumber)
	if box == "" {
		return nil, invalid("box_number", "is required")
	}
	if !in.Size.Valid() {
		return nil, invalid("size", "all dimensions must be positive")
	}
	if _, err := s.clusters.FindCluster(ctx, in.ClusterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("cluster_id", "cluster does not exist")
		}
		return nil, repoErr("find cluster", err)
	}

	m, err := s.repo.Create(ctx, &model.Mailbox{
		ID:        uuid.NewString(),
		ClusterID: in.ClusterID,
		BoxNumber: box,
		Size:      in.Size,
		Status:    model.MailboxAvailable,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, repoErr("create mailbox", err)
	}
	s.activity.Record(ctx, actor, "mailbox.create", "mailbox", m.ID, map[string]any{"box_number": m.BoxNumber})
	return m, nil
}

func (s *mailboxService) Get(ctx context.Context, id string) (*model.Mailbox, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find mailbox", err)
	}
	return m, nil
}

func (s *mailboxService) Update(ctx context.Context, actor Actor, id string, in UpdateMailboxInput) (*model.Mailbox, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find mailbox", err)
	}

	if in.BoxNumber != nil {
		box := strings.TrimSpace(*in.BoxNumber)
		if box == "" {
			return nil, invalid("box_number", "must not be empty")
		}
		m.BoxNumber = box
	}
	if in.Size != nil {
		if !in.Size.Valid() {
			return nil, invalid("size", "all dimensions must be positive")
		}
		m.Size = *in.Size
	}
	if in.Status != nil && *in.Status != m.Status {
		switch *in.Status {
		case model.MailboxAvailable, model.MailboxDisabled:
			if m.Status == model.MailboxAssigned {
				return nil, ErrInvalidTransition
			}
		case model.MailboxAssigned:
			// Renting goes through Assign so the renter is recorded.
			return nil, invalid("status", "use the assign endpoint to rent a mailbox")
		default:
			return nil, invalid("status", "unknown mailbox status")
		}
		m.Status = *in.Status
	}

	out, err := s.repo.Update(ctx, m)
	if err != nil {
		return nil, repoErr("update mailbox", err)
	}
	s.activity.Record(ctx, actor, "mailbox.update", "mailbox", id, map[string]any{"status": out.Status, "box_number": out.BoxNumber})
	return out, nil
}

func (s *mailboxService) Assign(ctx context.Context, actor Actor, id, userID string) (*model.Mailbox, error) {
	if _, err := s.profiles.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("user_id", "user does not exist")
		}
		return nil, repoErr("find profile", err)
	}
	if _, err := s.repo.FindByUser(ctx, userID); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, repoErr("find user mailbox", err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find mailbox", err)
	}
	if current.Status != model.MailboxAvailable {
		return nil, ErrConflict
	}

	m, err := s.repo.Assign(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, repoErr("assign mailbox", err)
	}
	s.activity.Record(ctx, actor, "mailbox.assign", "mailbox", id, map[string]any{"user_id": userID})
	return m, nil
}

func (s *mailboxService) Release(ctx context.Context, actor Actor, id string) (*model.Mailbox, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find mailbox", err)
	}
	if current.Status != model.MailboxAssigned {
		return nil, ErrInvalidTransition
	}
	m, err := s.repo.Release(ctx, id)
	if err != nil {
		return nil, repoErr("release mailbox", err)
	}
	s.activity.Record(ctx, actor, "mailbox.release", "mailbox", id, map[string]any{"user_id": current.UserID})
	return m, nil
}

func (s *mailboxService) List(ctx context.Context, f repository.MailboxFilter, limit, offset int) (*ListResult[model.Mailbox], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "unknown mailbox status")
	}
	pq := pageQuery(limit, offset)
	res, err := s.repo.List(ctx, f, pq)
	if err != nil {
		return nil, repoErr("list mailboxes", err)
	}
	return listResult(res, pq), nil
}

func (s *mailboxService) CheckFit(ctx context.Context, id string, item model.Dimensions) (*FitResult, error) {
	if !item.Valid() {
		return nil, invalid("size", "all dimensions must be positive")
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find mailbox", err)
	}
	return &FitResult{Fits: model.Fits(item, m.Size), Mailbox: m.Size, Item: item}, nil
}

func (s *mailboxService) Mine(ctx context.Context, actor Actor) (*MyMailbox, error) {
	m, err := s.repo.FindByUser(ctx, actor.ID)
	if err != nil {
		return nil, repoErr("find user mailbox", err)
	}
	addr, err := s.repo.Address(ctx, m.ID)
	if err != nil {
		return nil, repoErr("mailbox address", err)
	}
	return &MyMailbox{MailboxAddress: *addr, Lines: addr.Lines()}, nil
}
