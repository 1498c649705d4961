package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailroom/internal/model"
	"mailroom/internal/notify"
	"mailroom/internal/repository"
	"mailroom/internal/storage"
)

// IntakeInput describes a piece of mail logged by an operator.
type IntakeInput struct {
	MailboxID   string
	Sender      string
	Kind        model.MailKind
	Size        model.Dimensions
	WeightGrams int
	Envelope    *Upload
}

// MailService records incoming mail and serves it to its owner.
type MailService interface {
	Intake(ctx context.Context, operator Actor, in IntakeInput) (*model.MailItem, error)
	// List shows a USER only their own items; operators see everything the filter matches.
	List(ctx context.Context, actor Actor, f repository.MailFilter, limit, offset int) (*ListResult[model.MailItem], error)
	Get(ctx context.Context, actor Actor, id string) (*model.MailItem, error)
	ScanURL(ctx context.Context, actor Actor, id string) (string, error)
	EnvelopeURL(ctx context.Context, actor Actor, id string) (string, error)
}

type mailService struct {
	items      repository.MailItemRepository
	mailboxes  repository.MailboxRepository
	store      storage.Storage
	activity   ActivityService
	owners     ownerNotifier
	metrics    Metrics
	presignTTL time.Duration
	now        clock
}

func NewMailService(
	items repository.MailItemRepository,
	mailboxes repository.MailboxRepository,
	profiles repository.ProfileRepository,
	store storage.Storage,
	notifier notify.Notifier,
	activity ActivityService,
	metrics Metrics,
	log *zap.Logger,
	presignTTL time.Duration,
) MailService {
	return &mailService{
		items:      items,
		mailboxes:  mailboxes,
		store:      store,
		activity:   activity,
		owners:     ownerNotifier{profiles: profiles, notifier: notifier, log: log},
		metrics:    metrics,
		presignTTL: presignTTL,
		now:        utcNow,
	}
}

func (s *mailService) Intake(ctx context.Context, operator Actor, in IntakeInput) (*model.MailItem, error) {
	if !in.Kind.Valid() {
		return nil, invalid("kind", "must be LETTER or PARCEL")
	}
	if !in.Size.Valid() {
		return nil, invalid("size", "all dimensions must be positive")
	}
	if in.WeightGrams < 0 {
		return nil, invalid("weight_grams", "must not be negative")
	}

	box, err := s.mailboxes.FindByID(ctx, in.MailboxID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("mailbox_id", "mailbox does not exist")
		}
		return nil, repoErr("find mailbox", err)
	}
	if box.Status != model.MailboxAssigned || box.UserID == nil {
		return nil, invalid("mailbox_id", "mailbox is not assigned to a customer")
	}

	now := s.now()
	item := &model.MailItem{
		ID:          uuid.NewString(),
		UserID:      *box.UserID,
		MailboxID:   box.ID,
		Sender:      strings.TrimSpace(in.Sender),
		Kind:        in.Kind,
		Size:        in.Size,
		WeightGrams: in.WeightGrams,
		Oversized:   in.Kind == model.MailParcel && !model.Fits(in.Size, box.Size),
		Status:      model.MailReceived,
		ReceivedAt:  now,
		UpdatedAt:   now,
	}

	if in.Envelope != nil && in.Envelope.Reader != nil {
		item.EnvelopeKey = storage.ObjectKey(storage.PrefixEnvelope, item.ID, in.Envelope.Filename)
		if _, err := s.store.Put(ctx, item.EnvelopeKey, in.Envelope.Reader, storage.PutObjectOptions{
			Size:        in.Envelope.Size,
			ContentType: in.Envelope.ContentType,
		}); err != nil {
			return nil, fmt.Errorf("upload to storage: %w", err)
		}
	}

	out, err := s.items.Create(ctx, item)
	if err != nil {
		if item.EnvelopeKey != "" {
			if delErr := s.store.Delete(ctx, item.EnvelopeKey); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, repoErr("db save failed", err)
	}

	s.metrics.MailReceived(out.Kind, out.Oversized)
	s.activity.Record(ctx, operator, "mail.intake", "mail_item", out.ID, map[string]any{
		"mailbox_id": out.MailboxID,
		"kind":       out.Kind,
		"oversized":  out.Oversized,
	})
	s.owners.send(ctx, out.UserID, func(p model.Profile) notify.Message {
		return notify.MailReceived(p, *out)
	})
	return out, nil
}

func (s *mailService) List(ctx context.Context, actor Actor, f repository.MailFilter, limit, offset int) (*ListResult[model.MailItem], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "unknown mail status")
	}
	if !actor.Is(model.RoleOperator) {
		f.UserID = actor.ID
	}
	pq := pageQuery(limit, offset)
	res, err := s.items.List(ctx, f, pq)
	if err != nil {
		return nil, repoErr("list mail", err)
	}
	return listResult(res, pq), nil
}

func (s *mailService) Get(ctx context.Context, actor Actor, id string) (*model.MailItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find mail", err)
	}
	if !actor.Is(model.RoleOperator) && item.UserID != actor.ID {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *mailService) ScanURL(ctx context.Context, actor Actor, id string) (string, error) {
	item, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return s.presign(ctx, item.ScanKey)
}

func (s *mailService) EnvelopeURL(ctx context.Context, actor Actor, id string) (string, error) {
	item, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return s.presign(ctx, item.EnvelopeKey)
}

func (s *mailService) presign(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrNotFound
	}
	u, err := s.store.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u, nil
}
