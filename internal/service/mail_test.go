package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	repoMocks "mailroom/internal/repository/mocks"
	"mailroom/internal/storage"
	storeMocks "mailroom/internal/storage/mocks"
)

type mailMocks struct {
	items    *repoMocks.MockMailItemRepository
	boxes    *repoMocks.MockMailboxRepository
	profiles *repoMocks.MockProfileRepository
	store    *storeMocks.MockStorage
	notifier *fakeNotifier
	metrics  *fakeMetrics
	activity *fakeActivity
	logs     *observer.ObservedLogs
}

func newTestMail() (*mailService, mailMocks) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := mailMocks{
		items:    new(repoMocks.MockMailItemRepository),
		boxes:    new(repoMocks.MockMailboxRepository),
		profiles: new(repoMocks.MockProfileRepository),
		store:    new(storeMocks.MockStorage),
		notifier: &fakeNotifier{},
		metrics:  &fakeMetrics{},
		activity: &fakeActivity{},
		logs:     logs,
	}
	svc := NewMailService(m.items, m.boxes, m.profiles, m.store, m.notifier, m.activity, m.metrics, zap.New(core), 15*time.Minute).(*mailService)
	svc.now = fixedClock
	return svc, m
}

func assignedBox() *model.Mailbox {
	return &model.Mailbox{ID: "m1", Status: model.MailboxAssigned, UserID: strPtr("u1"), Size: smallBox}
}

func TestMailService_Intake(t *testing.T) {
	ctx := context.Background()
	operator := Actor{ID: "op1", Role: model.RoleOperator}
	owner := &model.Profile{ID: "u1", Email: "ada@example.com", FullName: "Ada"}

	t.Run("letter with envelope image", func(t *testing.T) {
		svc, m := newTestMail()
		m.boxes.On("FindByID", ctx, "m1").Return(assignedBox(), nil)
		m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "envelopes/") && strings.HasSuffix(key, ".png")
		}), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
		m.items.On("Create", ctx, mock.MatchedBy(func(it *model.MailItem) bool {
			return it.UserID == "u1" && it.Status == model.MailReceived && !it.Oversized &&
				strings.HasPrefix(it.EnvelopeKey, "envelopes/"+it.ID+"/")
		})).Return(func(_ context.Context, it *model.MailItem) *model.MailItem { return it }, nil)
		m.profiles.On("FindByID", ctx, "u1").Return(owner, nil)

		item, err := svc.Intake(ctx, operator, IntakeInput{
			MailboxID: "m1",
			Sender:    "IRS",
			Kind:      model.MailLetter,
			Size:      model.Dimensions{Width: 22, Height: 11, Depth: 0.5},
			Envelope:  &Upload{Reader: strings.NewReader("png"), Filename: "front.png", ContentType: "image/png", Size: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, "u1", item.UserID)
		assert.Equal(t, []model.MailKind{model.MailLetter}, m.metrics.received)
		assert.Equal(t, []string{"mail.intake"}, m.activity.actions)
		require.Len(t, m.notifier.sent, 1)
		assert.Equal(t, "ada@example.com", m.notifier.sent[0].To)
	})

	t.Run("oversized parcel is accepted and flagged", func(t *testing.T) {
		svc, m := newTestMail()
		m.boxes.On("FindByID", ctx, "m1").Return(assignedBox(), nil)
		m.items.On("Create", ctx, mock.MatchedBy(func(it *model.MailItem) bool {
			return it.Oversized && it.EnvelopeKey == ""
		})).Return(&model.MailItem{ID: "i1", UserID: "u1", Kind: model.MailParcel, Oversized: true}, nil)
		m.profiles.On("FindByID", ctx, "u1").Return(owner, nil)

		item, err := svc.Intake(ctx, operator, IntakeInput{
			MailboxID: "m1",
			Kind:      model.MailParcel,
			Size:      model.Dimensions{Width: 50, Height: 50, Depth: 50},
		})
		require.NoError(t, err)
		assert.True(t, item.Oversized)
		assert.Contains(t, m.notifier.sent[0].Text, "front desk")
		m.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mailbox not assigned", func(t *testing.T) {
		svc, m := newTestMail()
		m.boxes.On("FindByID", ctx, "m1").Return(&model.Mailbox{ID: "m1", Status: model.MailboxAvailable, Size: smallBox}, nil)

		_, err := svc.Intake(ctx, operator, IntakeInput{MailboxID: "m1", Kind: model.MailLetter, Size: smallBox})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "mailbox_id", ve.Field)
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc, _ := newTestMail()
		_, err := svc.Intake(ctx, operator, IntakeInput{MailboxID: "m1", Kind: "POSTCARD", Size: smallBox})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "kind", ve.Field)
	})

	t.Run("db failure rolls back the envelope", func(t *testing.T) {
		svc, m := newTestMail()
		m.boxes.On("FindByID", ctx, "m1").Return(assignedBox(), nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
		m.items.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
		m.store.On("Delete", ctx, mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "envelopes/") })).Return(nil)

		_, err := svc.Intake(ctx, operator, IntakeInput{
			MailboxID: "m1",
			Kind:      model.MailLetter,
			Size:      smallBox,
			Envelope:  &Upload{Reader: strings.NewReader("x"), Filename: "e.jpg"},
		})
		assert.ErrorContains(t, err, "db save failed: db fail")
		m.store.AssertExpectations(t)
		assert.Empty(t, m.notifier.sent)
	})

	t.Run("notification failure is only logged", func(t *testing.T) {
		svc, m := newTestMail()
		m.notifier.err = errors.New("ses down")
		m.boxes.On("FindByID", ctx, "m1").Return(assignedBox(), nil)
		m.items.On("Create", ctx, mock.Anything).Return(&model.MailItem{ID: "i1", UserID: "u1", Kind: model.MailLetter}, nil)
		m.profiles.On("FindByID", ctx, "u1").Return(owner, nil)

		_, err := svc.Intake(ctx, operator, IntakeInput{MailboxID: "m1", Kind: model.MailLetter, Size: smallBox})
		require.NoError(t, err)
		assert.Equal(t, 1, m.logs.FilterMessage("notify_failed").Len())
	})
}

func TestMailService_ListScopesUsers(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestMail()
	page := &repository.PageResult[model.MailItem]{Items: []model.MailItem{{ID: "i1"}}, Total: 1}
	m.items.On("List", ctx, repository.MailFilter{UserID: "u1", Status: model.MailReceived}, repository.PageQuery{Limit: 20}).Return(page, nil)
	m.items.On("List", ctx, repository.MailFilter{MailboxID: "m1"}, repository.PageQuery{Limit: 20}).Return(page, nil)

	_, err := svc.List(ctx, Actor{ID: "u1", Role: model.RoleUser}, repository.MailFilter{UserID: "someone-else", Status: model.MailReceived}, 0, 0)
	require.NoError(t, err)

	_, err = svc.List(ctx, Actor{ID: "op1", Role: model.RoleOperator}, repository.MailFilter{MailboxID: "m1"}, 0, 0)
	require.NoError(t, err)
	m.items.AssertExpectations(t)
}

func TestMailService_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestMail()
	item := &model.MailItem{ID: "i1", UserID: "u1", ScanKey: "scans/i1/a.pdf"}
	m.items.On("FindByID", ctx, "i1").Return(item, nil)
	m.items.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
	m.store.On("PresignGet", ctx, "scans/i1/a.pdf", 15*time.Minute).Return("https://signed", nil)

	_, err := svc.Get(ctx, Actor{ID: "u2", Role: model.RoleUser}, "i1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, Actor{ID: "u1", Role: model.RoleUser}, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := svc.ScanURL(ctx, Actor{ID: "u1", Role: model.RoleUser}, "i1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed", u)

	_, err = svc.ScanURL(ctx, Actor{ID: "u2", Role: model.RoleUser}, "i1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.EnvelopeURL(ctx, Actor{ID: "op1", Role: model.RoleOperator}, "i1")
	assert.ErrorIs(t, err, ErrNotFound)
}
