package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// Payment provider event types.
const (
	EventSubscriptionCreated  = "subscription.created"
	EventSubscriptionUpdated  = "subscription.updated"
	EventSubscriptionCanceled = "subscription.canceled"
)

// WebhookEvent is the payment provider callback body.
type WebhookEvent struct {
	Type string              `json:"type"`
	Data WebhookSubscription `json:"data"`
}

// WebhookSubscription is the provider's view of one subscription.
type WebhookSubscription struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	PackageID        string    `json:"package_id"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}

// SubscriptionService mirrors provider subscriptions and gates paid features.
type SubscriptionService interface {
	// HandleWebhook verifies and applies a provider callback. It returns nil, nil for
	// event types it does not handle.
	HandleWebhook(ctx context.Context, signature string, body []byte) (*model.Subscription, error)
	Mine(ctx context.Context, actor Actor) (*model.Subscription, error)
	List(ctx context.Context, status model.SubscriptionStatus, limit, offset int) (*ListResult[model.Subscription], error)
	// ExpireLapsed marks subscriptions whose period ended more than grace ago as EXPIRED.
	ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error)
}

type subscriptionService struct {
	repo     repository.SubscriptionRepository
	packages repository.PackageRepository
	profiles repository.ProfileRepository
	activity ActivityService
	metrics  Metrics
	log      *zap.Logger
	secret   []byte
	now      clock
}

func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	packages repository.PackageRepository,
	profiles repository.ProfileRepository,
	activity ActivityService,
	metrics Metrics,
	log *zap.Logger,
	secret string,
) SubscriptionService {
	return &subscriptionService{
		repo:     repo,
		packages: packages,
		profiles: profiles,
		activity: activity,
		metrics:  metrics,
		log:      log,
		secret:   []byte(secret),
		now:      utcNow,
	}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *subscriptionService) verify(signature string, body []byte) bool {
	if len(s.secret) == 0 {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

func (s *subscriptionService) HandleWebhook(ctx context.Context, signature string, body []byte) (*model.Subscription, error) {
	if !s.verify(signature, body) {
		s.metrics.WebhookEvent("", "bad_signature")
		return nil, ErrUnauthorized
	}

	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.metrics.WebhookEvent("", "malformed")
		return nil, invalid("body", "malformed event payload")
	}

	var status model.SubscriptionStatus
	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		status = model.SubscriptionStatus(strings.ToUpper(ev.Data.Status))
		if status == "" {
			status = model.SubscriptionActive
		}
		if !status.Valid() {
			s.metrics.WebhookEvent(ev.Type, "invalid")
			return nil, invalid("data.status", "unknown subscription status")
		}
	case EventSubscriptionCanceled:
		status = model.SubscriptionCanceled
	default:
		s.log.Info("webhook_event_ignored", zap.String("type", ev.Type))
		s.metrics.WebhookEvent(ev.Type, "ignored")
		return nil, nil
	}

	sub, err := s.apply(ctx, ev, status)
	if err != nil {
		s.metrics.WebhookEvent(ev.Type, "invalid")
		return nil, err
	}
	s.metrics.WebhookEvent(ev.Type, "applied")
	s.activity.Record(ctx, Actor{}, "subscription."+strings.TrimPrefix(ev.Type, "subscription."), "subscription", sub.ID, map[string]any{
		"external_id": sub.ExternalID,
		"status":      sub.Status,
	})
	return sub, nil
}

func (s *subscriptionService) apply(ctx context.Context, ev WebhookEvent, status model.SubscriptionStatus) (*model.Subscription, error) {
	d := ev.Data
	if strings.TrimSpace(d.ID) == "" {
		return nil, invalid("data.id", "is required")
	}
	if d.CurrentPeriodEnd.IsZero() {
		return nil, invalid("data.current_period_end", "is required")
	}
	// Provider-side ids (cus_..., price_...) are not ours and would fail the uuid cast.
	if _, err := uuid.Parse(d.UserID); err != nil {
		return nil, invalid("data.user_id", "unknown user")
	}
	if _, err := uuid.Parse(d.PackageID); err != nil {
		return nil, invalid("data.package_id", "unknown package")
	}
	if _, err := s.profiles.FindByID(ctx, d.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("data.user_id", "unknown user")
		}
		return nil, repoErr("find profile", err)
	}
	if _, err := s.packages.FindByID(ctx, d.PackageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("data.package_id", "unknown package")
		}
		return nil, repoErr("find package", err)
	}

	sub, err := s.repo.Upsert(ctx, &model.Subscription{
		ID:               uuid.NewString(),
		UserID:           d.UserID,
		PackageID:        d.PackageID,
		ExternalID:       d.ID,
		Status:           status,
		CurrentPeriodEnd: d.CurrentPeriodEnd.UTC(),
		UpdatedAt:        s.now(),
	})
	if err != nil {
		return nil, repoErr("upsert subscription", err)
	}
	return sub, nil
}

func (s *subscriptionService) Mine(ctx context.Context, actor Actor) (*model.Subscription, error) {
	sub, err := s.repo.LatestByUser(ctx, actor.ID)
	if err != nil {
		return nil, repoErr("latest subscription", err)
	}
	return sub, nil
}

func (s *subscriptionService) List(ctx context.Context, status model.SubscriptionStatus, limit, offset int) (*ListResult[model.Subscription], error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "unknown subscription status")
	}
	pq := pageQuery(limit, offset)
	res, err := s.repo.List(ctx, status, pq)
	if err != nil {
		return nil, repoErr("list subscriptions", err)
	}
	return listResult(res, pq), nil
}

func (s *subscriptionService) ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error) {
	n, err := s.repo.ExpireEndedBefore(ctx, s.now().Add(-grace))
	if err != nil {
		return 0, repoErr("expire subscriptions", err)
	}
	if n > 0 {
		s.activity.Record(ctx, Actor{}, "subscription.expire", "subscription", "", map[string]any{"count": n})
	}
	return n, nil
}
