package service

import (
	"context"

	"go.uber.org/zap"

	"mailroom/internal/model"
	"mailroom/internal/notify"
	"mailroom/internal/repository"
)

// Metrics receives domain counters.
type Metrics interface {
	MailReceived(kind model.MailKind, oversized bool)
	ActionRequested(action model.ActionType)
	ActionCompleted(action model.ActionType)
	WebhookEvent(event, outcome string)
}

// ownerNotifier emails the owner of a mail item. Delivery problems are logged only.
type ownerNotifier struct {
	profiles repository.ProfileRepository
	notifier notify.Notifier
	log      *zap.Logger
}

func (n ownerNotifier) send(ctx context.Context, userID string, build func(model.Profile) notify.Message) {
	p, err := n.profiles.FindByID(ctx, userID)
	if err != nil {
		n.log.Warn("notify_lookup_failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	msg := build(*p)
	if err := n.notifier.Notify(ctx, msg); err != nil {
		n.log.Warn("notify_failed", zap.String("user_id", userID), zap.String("subject", msg.Subject), zap.Error(err))
	}
}
