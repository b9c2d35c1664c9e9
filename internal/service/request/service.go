package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/internal/service/event"
)

// TxRunner executes a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

type Service struct {
	tx       TxRunner
	repo     repository.RequestRepository
	eventSvc *event.Service
}

func NewService(tx TxRunner, repo repository.RequestRepository, eventSvc *event.Service) *Service {
	return &Service{tx: tx, repo: repo, eventSvc: eventSvc}
}

// Create stores a new open request and stages its request_created event in
// the same transaction. Notification fan-out happens downstream of the event
// boundary and can never block or roll back creation.
func (s *Service) Create(ctx context.Context, requesterID uuid.UUID, form *model.CreateRequestRequest) (*model.Request, error) {
	req := &model.Request{
		ID:           uuid.New(),
		RequesterID:  requesterID,
		PatientName:  form.PatientName,
		Relationship: form.Relationship,
		BloodGroup:   model.BloodGroup(form.BloodGroup),
		Units:        form.Units,
		Hospital:     form.Hospital,
		Location:     form.Location,
		Region:       form.Region,
		Urgency:      model.Urgency(form.Urgency),
		MedicalNote:  form.MedicalNote,
		Phone:        form.Phone,
	}

	if form.NeededBy != "" {
		neededBy, err := time.Parse("2006-01-02", form.NeededBy)
		if err == nil {
			req.NeededBy = &neededBy
		}
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.CreateTx(ctx, tx, req); err != nil {
			return err
		}
		return s.eventSvc.EmitTx(ctx, tx, model.EventRequestCreated, model.RequestCreatedEvent{
			RequestID:  req.ID,
			BloodGroup: req.BloodGroup,
			Region:     req.Region,
			Urgency:    req.Urgency,
			CreatedAt:  req.CreatedAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return req, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOpen(ctx context.Context) ([]*model.Request, error) {
	requests, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open requests: %w", err)
	}
	return requests, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.Request, error) {
	requests, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// NewRequestCount backs the notification bell: open requests in the donor's
// region created since they last checked.
func (s *Service) NewRequestCount(ctx context.Context, region string, since *time.Time) (int, error) {
	if region == "" || since == nil {
		return 0, nil
	}
	return s.repo.CountOpenSince(ctx, region, *since)
}
