package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailroom/internal/logger"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// ActivityService records and lists the audit trail.
type ActivityService interface {
	// Record appends an entry. Failures are logged and never returned.
	Record(ctx context.Context, actor Actor, action, entityType, entityID string, details any)
	List(ctx context.Context, f repository.ActivityFilter, limit, offset int) (*ListResult[model.ActivityLog], error)
}

type activityService struct {
	repo repository.ActivityRepository
	log  *zap.Logger
	now  clock
}

func NewActivityService(repo repository.ActivityRepository, log *zap.Logger) ActivityService {
	return &activityService{repo: repo, log: log, now: utcNow}
}

func (s *activityService) Record(ctx context.Context, actor Actor, action, entityType, entityID string, details any) {
	entry := &model.ActivityLog{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IP:         actor.IP,
		RequestID:  logger.RequestID(ctx),
		CreatedAt:  s.now(),
	}
	if actor.ID != "" {
		id := actor.ID
		entry.ActorID = &id
	}
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			logger.For(ctx, s.log).Warn("activity_details_encode_failed", zap.String("action", action), zap.Error(err))
		} else {
			entry.Details = b
		}
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.For(ctx, s.log).Warn("activity_record_failed",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

func (s *activityService) List(ctx context.Context, f repository.ActivityFilter, limit, offset int) (*ListResult[model.ActivityLog], error) {
	pq := pageQuery(limit, offset)
	res, err := s.repo.List(ctx, f, pq)
	if err != nil {
		return nil, repoErr("list activity", err)
	}
	return listResult(res, pq), nil
}
