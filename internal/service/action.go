package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailroom/internal/model"
	"mailroom/internal/notify"
	"mailroom/internal/repository"
	"mailroom/internal/storage"
)

// RequestActionInput is a customer's instruction for one of their mail items.
type RequestActionInput struct {
	MailItemID     string
	Action         model.ActionType
	ForwardAddress string
	Notes          string
}

// CompleteActionInput carries the operator's proof of work.
type CompleteActionInput struct {
	Carrier        string
	TrackingNumber string
	Scan           *Upload
}

// ActionService drives mail action requests through their workflow.
//
//	PENDING     -> APPROVED | IN_PROGRESS | REJECTED | CANCELED
//	APPROVED    -> IN_PROGRESS | REJECTED
//	IN_PROGRESS -> COMPLETED
type ActionService interface {
	Request(ctx context.Context, actor Actor, in RequestActionInput) (*model.MailActionRequest, error)
	Cancel(ctx context.Context, actor Actor, id string) (*model.MailActionRequest, error)
	Approve(ctx context.Context, operator Actor, id string) (*model.MailActionRequest, error)
	Reject(ctx context.Context, operator Actor, id, reason string) (*model.MailActionRequest, error)
	Start(ctx context.Context, operator Actor, id string) (*model.MailActionRequest, error)
	Complete(ctx context.Context, operator Actor, id string, in CompleteActionInput) (*model.MailActionRequest, error)
	Get(ctx context.Context, actor Actor, id string) (*model.MailActionRequest, error)
	// List shows a USER only their own requests; operators see the whole queue.
	List(ctx context.Context, actor Actor, f repository.ActionFilter, limit, offset int) (*ListResult[model.MailActionRequest], error)
}

type actionService struct {
	repo     repository.ActionRepository
	items    repository.MailItemRepository
	profiles repository.ProfileRepository
	subs     repository.SubscriptionRepository
	store    storage.Storage
	activity ActivityService
	owners   ownerNotifier
	metrics  Metrics
	now      clock
}

func NewActionService(
	repo repository.ActionRepository,
	items repository.MailItemRepository,
	profiles repository.ProfileRepository,
	subs repository.SubscriptionRepository,
	store storage.Storage,
	notifier notify.Notifier,
	activity ActivityService,
	metrics Metrics,
	log *zap.Logger,
) ActionService {
	return &actionService{
		repo:     repo,
		items:    items,
		profiles: profiles,
		subs:     subs,
		store:    store,
		activity: activity,
		owners:   ownerNotifier{profiles: profiles, notifier: notifier, log: log},
		metrics:  metrics,
		now:      utcNow,
	}
}

func (s *actionService) Request(ctx context.Context, actor Actor, in RequestActionInput) (*model.MailActionRequest, error) {
	if !in.Action.Valid() {
		return nil, invalid("action", "must be one of OPEN_AND_SCAN, FORWARD, SHRED, HOLD")
	}
	in.ForwardAddress = strings.TrimSpace(in.ForwardAddress)
	if in.Action == model.ActionForward && in.ForwardAddress == "" {
		return nil, invalid("forward_address", "is required for FORWARD")
	}

	item, err := s.items.FindByID(ctx, in.MailItemID)
	if err != nil {
		return nil, repoErr("find mail", err)
	}
	if item.UserID != actor.ID {
		return nil, ErrNotFound
	}
	if item.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	if in.Action == model.ActionOpenAndScan && item.ScanKey != "" {
		return nil, invalid("action", "item has already been scanned")
	}

	if in.Action.RequiresKYC() {
		p, err := s.profiles.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, repoErr("find profile", err)
		}
		if p.KYCStatus != model.KYCApproved {
			return nil, ErrKYCRequired
		}
	}

	if _, err := s.subs.FindActiveByUser(ctx, actor.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionRequired
		}
		return nil, repoErr("find subscription", err)
	}

	open, err := s.repo.HasActionable(ctx, item.ID)
	if err != nil {
		return nil, repoErr("check open requests", err)
	}
	if open {
		return nil, ErrConflict
	}

	now := s.now()
	req, err := s.repo.Create(ctx, &model.MailActionRequest{
		ID:             uuid.NewString(),
		MailItemID:     item.ID,
		UserID:         actor.ID,
		Action:         in.Action,
		Status:         model.RequestPending,
		ForwardAddress: in.ForwardAddress,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, repoErr("create action", err)
	}

	s.metrics.ActionRequested(req.Action)
	s.activity.Record(ctx, actor, "action.request", "mail_action_request", req.ID, map[string]any{
		"mail_item_id": req.MailItemID,
		"action":       req.Action,
	})
	return req, nil
}

func (s *actionService) Cancel(ctx context.Context, actor Actor, id string) (*model.MailActionRequest, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find action", err)
	}
	if current.UserID != actor.ID {
		return nil, ErrNotFound
	}
	return s.transition(ctx, actor, current, model.RequestCanceled, "")
}

func (s *actionService) Approve(ctx context.Context, operator Actor, id string) (*model.MailActionRequest, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find action", err)
	}
	return s.transition(ctx, operator, current, model.RequestApproved, "")
}

func (s *actionService) Reject(ctx context.Context, operator Actor, id, reason string) (*model.MailActionRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "is required when rejecting")
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find action", err)
	}
	req, err := s.transition(ctx, operator, current, model.RequestRejected, reason)
	if err != nil {
		return nil, err
	}
	s.owners.send(ctx, req.UserID, func(p model.Profile) notify.Message {
		return notify.ActionRejected(p, *req)
	})
	return req, nil
}

func (s *actionService) Start(ctx context.Context, operator Actor, id string) (*model.MailActionRequest, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find action", err)
	}
	return s.transition(ctx, operator, current, model.RequestInProgress, "")
}

func (s *actionService) transition(ctx context.Context, actor Actor, current *model.MailActionRequest, to model.RequestStatus, notes string) (*model.MailActionRequest, error) {
	if !model.CanTransition(current.Status, to) {
		return nil, ErrInvalidTransition
	}
	change := repository.StatusChange{
		From:  current.Status,
		To:    to,
		Notes: notes,
		At:    s.now(),
	}
	// Customers cancel their own requests; only staff are recorded as processors.
	if actor.Is(model.RoleOperator) {
		change.ProcessedBy = actor.ID
	}

	req, err := s.repo.Transition(ctx, current.ID, change)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, repoErr("transition action", err)
	}
	s.activity.Record(ctx, actor, "action."+strings.ToLower(string(to)), "mail_action_request", req.ID, map[string]any{
		"from":   current.Status,
		"to":     to,
		"reason": notes,
	})
	return req, nil
}

func (s *actionService) Complete(ctx context.Context, operator Actor, id string, in CompleteActionInput) (*model.MailActionRequest, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find action", err)
	}
	if current.Status != model.RequestInProgress {
		return nil, ErrInvalidTransition
	}

	c := repository.Completion{
		ProcessedBy: operator.ID,
		MailStatus:  current.Action.ResultStatus(),
		At:          s.now(),
	}
	switch current.Action {
	case model.ActionOpenAndScan:
		if in.Scan == nil || in.Scan.Reader == nil {
			return nil, invalid("scan", "file is required for OPEN_AND_SCAN")
		}
	case model.ActionForward:
		c.Carrier = strings.TrimSpace(in.Carrier)
		c.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
		if c.Carrier == "" {
			return nil, invalid("carrier", "is required for FORWARD")
		}
		if c.TrackingNumber == "" {
			return nil, invalid("tracking_number", "is required for FORWARD")
		}
	}

	if current.Action == model.ActionOpenAndScan {
		c.ScanKey = storage.ObjectKey(storage.PrefixScan, current.MailItemID, in.Scan.Filename)
		if _, err := s.store.Put(ctx, c.ScanKey, in.Scan.Reader, storage.PutObjectOptions{
			Size:        in.Scan.Size,
			ContentType: in.Scan.ContentType,
		}); err != nil {
			return nil, fmt.Errorf("upload to storage: %w", err)
		}
	}

	req, err := s.repo.Complete(ctx, id, c)
	if err != nil {
		if c.ScanKey != "" {
			if delErr := s.store.Delete(ctx, c.ScanKey); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, repoErr("db save failed", err)
	}

	s.metrics.ActionCompleted(req.Action)
	s.activity.Record(ctx, operator, "action.complete", "mail_action_request", req.ID, map[string]any{
		"mail_item_id": req.MailItemID,
		"action":       req.Action,
		"mail_status":  c.MailStatus,
	})
	s.owners.send(ctx, req.UserID, func(p model.Profile) notify.Message {
		return notify.ActionCompleted(p, *req)
	})
	return req, nil
}

func (s *actionService) Get(ctx context.Context, actor Actor, id string) (*model.MailActionRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find action", err)
	}
	if !actor.Is(model.RoleOperator) && req.UserID != actor.ID {
		return nil, ErrNotFound
	}
	return req, nil
}

func (s *actionService) List(ctx context.Context, actor Actor, f repository.ActionFilter, limit, offset int) (*ListResult[model.MailActionRequest], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "unknown request status")
	}
	if f.Action != "" && !f.Action.Valid() {
		return nil, invalid("action", "unknown action type")
	}
	if !actor.Is(model.RoleOperator) {
		f.UserID = actor.ID
	}
	pq := pageQuery(limit, offset)
	res, err := s.repo.List(ctx, f, pq)
	if err != nil {
		return nil, repoErr("list actions", err)
	}
	return listResult(res, pq), nil
}
