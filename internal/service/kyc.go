package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/storage"
)

// Upload is a file handed to a use case for object storage.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// SubmitKYCInput carries an identity or business verification submission.
type SubmitKYCInput struct {
	Kind         model.VerificationKind
	DocumentType string
	BusinessName string
	Document     Upload
}

// KYCService runs the identity verification workflow.
type KYCService interface {
	Submit(ctx context.Context, actor Actor, in SubmitKYCInput) (*model.KYCVerification, error)
	Mine(ctx context.Context, actor Actor) (*model.KYCVerification, error)
	ListPending(ctx context.Context, limit, offset int) (*ListResult[model.KYCVerification], error)
	Approve(ctx context.Context, reviewer Actor, id string) (*model.KYCVerification, error)
	Reject(ctx context.Context, reviewer Actor, id, reason string) (*model.KYCVerification, error)
	DocumentURL(ctx context.Context, id string) (string, error)
}

type kycService struct {
	repo       repository.KYCRepository
	profiles   repository.ProfileRepository
	store      storage.Storage
	activity   ActivityService
	presignTTL time.Duration
	now        clock
}

func NewKYCService(repo repository.KYCRepository, profiles repository.ProfileRepository, store storage.Storage, activity ActivityService, presignTTL time.Duration) KYCService {
	return &kycService{
		repo:       repo,
		profiles:   profiles,
		store:      store,
		activity:   activity,
		presignTTL: presignTTL,
		now:        utcNow,
	}
}

func (s *kycService) Submit(ctx context.Context, actor Actor, in SubmitKYCInput) (*model.KYCVerification, error) {
	if in.Kind == "" {
		in.Kind = model.KindKYC
	}
	if in.Kind != model.KindKYC && in.Kind != model.KindKYB {
		return nil, invalid("kind", "must be KYC or KYB")
	}
	if strings.TrimSpace(in.DocumentType) == "" {
		return nil, invalid("document_type", "is required")
	}
	if in.Kind == model.KindKYB && strings.TrimSpace(in.BusinessName) == "" {
		return nil, invalid("business_name", "is required for business verification")
	}
	if in.Document.Reader == nil {
		return nil, invalid("document", "file is required")
	}

	p, err := s.profiles.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repoErr("find profile", err)
	}
	if p.KYCStatus == model.KYCApproved || p.KYCStatus == model.KYCPending {
		return nil, ErrConflict
	}

	key := storage.ObjectKey(storage.PrefixKYC, actor.ID, in.Document.Filename)
	if _, err := s.store.Put(ctx, key, in.Document.Reader, storage.PutObjectOptions{
		Size:        in.Document.Size,
		ContentType: in.Document.ContentType,
		Metadata:    map[string]string{"original-filename": in.Document.Filename},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	v, err := s.repo.Create(ctx, &model.KYCVerification{
		ID:           uuid.NewString(),
		UserID:       actor.ID,
		Kind:         in.Kind,
		DocumentType: strings.TrimSpace(in.DocumentType),
		DocumentKey:  key,
		BusinessName: strings.TrimSpace(in.BusinessName),
		SubmittedAt:  s.now(),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, repoErr("db save failed", err)
	}

	s.activity.Record(ctx, actor, "kyc.submit", "kyc_verification", v.ID, map[string]any{"kind": v.Kind})
	return v, nil
}

func (s *kycService) Mine(ctx context.Context, actor Actor) (*model.KYCVerification, error) {
	v, err := s.repo.LatestForUser(ctx, actor.ID)
	if err != nil {
		return nil, repoErr("latest kyc", err)
	}
	return v, nil
}

func (s *kycService) ListPending(ctx context.Context, limit, offset int) (*ListResult[model.KYCVerification], error) {
	pq := pageQuery(limit, offset)
	res, err := s.repo.ListByStatus(ctx, model.VerificationPending, pq)
	if err != nil {
		return nil, repoErr("list kyc", err)
	}
	return listResult(res, pq), nil
}

func (s *kycService) Approve(ctx context.Context, reviewer Actor, id string) (*model.KYCVerification, error) {
	return s.review(ctx, reviewer, id, model.VerificationApproved, "")
}

func (s *kycService) Reject(ctx context.Context, reviewer Actor, id, reason string) (*model.KYCVerification, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "is required when rejecting")
	}
	return s.review(ctx, reviewer, id, model.VerificationRejected, reason)
}

func (s *kycService) review(ctx context.Context, reviewer Actor, id string, status model.VerificationStatus, reason string) (*model.KYCVerification, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr("find kyc", err)
	}
	if current.Status != model.VerificationPending {
		return nil, ErrInvalidTransition
	}

	v, err := s.repo.Review(ctx, id, status, reviewer.ID, reason, s.now())
	if err != nil {
		// Another reviewer got there first.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, repoErr("review kyc", err)
	}

	action := "kyc.approve"
	if status == model.VerificationRejected {
		action = "kyc.reject"
	}
	s.activity.Record(ctx, reviewer, action, "kyc_verification", v.ID, map[string]any{"user_id": v.UserID, "reason": reason})
	return v, nil
}

func (s *kycService) DocumentURL(ctx context.Context, id string) (string, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", repoErr("find kyc", err)
	}
	u, err := s.store.PresignGet(ctx, v.DocumentKey, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign document: %w", err)
	}
	return u, nil
}
