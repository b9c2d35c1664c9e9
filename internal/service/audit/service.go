package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
)

// Service records lifecycle transitions as a queryable fulfillment trail.
// Logging is best-effort: a failed audit write never fails the operation that
// produced it.
type Service struct {
	repo   repository.AuditRepository
	logger *logger.Logger
}

func NewService(repo repository.AuditRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Log(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata model.JSONMap) {
	entry := &model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error(err, "Failed to write audit log",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID.String())
	}
}

func (s *Service) Trail(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}
