package service

import (
	"context"
	"sync"
	"time"

	"mailroom/internal/model"
	"mailroom/internal/notify"
	"mailroom/internal/repository"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeActivity struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeActivity) Record(_ context.Context, _ Actor, action, _, _ string, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

func (f *fakeActivity) List(context.Context, repository.ActivityFilter, int, int) (*ListResult[model.ActivityLog], error) {
	return &ListResult[model.ActivityLog]{}, nil
}

type fakeMetrics struct {
	received  []model.MailKind
	requested []model.ActionType
	completed []model.ActionType
	webhooks  []string
}

func (f *fakeMetrics) MailReceived(kind model.MailKind, _ bool) { f.received = append(f.received, kind) }

func (f *fakeMetrics) ActionRequested(a model.ActionType) { f.requested = append(f.requested, a) }

func (f *fakeMetrics) ActionCompleted(a model.ActionType) { f.completed = append(f.completed, a) }

func (f *fakeMetrics) WebhookEvent(event, outcome string) {
	f.webhooks = append(f.webhooks, event+":"+outcome)
}

type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func strPtr(s string) *string { return &s }
