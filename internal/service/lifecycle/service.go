package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jeevanrakshak/donor-api/internal/email"
	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/internal/service/audit"
	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
)

// TxRunner executes a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// Service enforces the request/donation state machine. Every multi-record
// transition runs inside a single transaction: either both writes land or
// neither does.
type Service struct {
	tx        TxRunner
	requests  repository.RequestRepository
	donations repository.DonationRepository
	donors    repository.DonorRepository
	emailSvc  email.Service
	auditor   *audit.Service
	logger    *logger.Logger
}

func NewService(
	tx TxRunner,
	requests repository.RequestRepository,
	donations repository.DonationRepository,
	donors repository.DonorRepository,
	emailSvc email.Service,
	auditor *audit.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		tx:        tx,
		requests:  requests,
		donations: donations,
		donors:    donors,
		emailSvc:  emailSvc,
		auditor:   auditor,
		logger:    logger,
	}
}

// Accept transitions an open request to pending_fulfillment and creates the
// linked platform donation, atomically. The row lock plus the status guard on
// the update mean that of two concurrent accepts exactly one wins; the other
// observes PreconditionFailed.
func (s *Service) Accept(ctx context.Context, requestID uuid.UUID, donor *model.Donor) (*model.Donation, error) {
	var donation *model.Donation
	var request *model.Request

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		req, err := s.requests.GetForUpdateTx(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if req.Status != model.RequestStatusOpen {
			return apperrors.NewPreconditionFailed("request is no longer open", nil)
		}
		if req.RequesterID == donor.ID {
			return apperrors.NewPreconditionFailed("requesters cannot accept their own request", nil)
		}

		d := &model.Donation{
			ID:            uuid.New(),
			DonorID:       donor.ID,
			DonorName:     donor.Name,
			BloodGroup:    req.BloodGroup,
			RequestID:     &req.ID,
			RecipientName: req.PatientName,
			Hospital:      req.Hospital,
			Status:        model.DonationStatusPending,
			Type:          model.DonationTypePlatform,
		}
		if err := s.donations.CreateTx(ctx, tx, d); err != nil {
			return err
		}

		accepted, err := s.requests.MarkAcceptedTx(ctx, tx, req.ID, donor.ID, donor.Name, d.ID)
		if err != nil {
			return err
		}
		if !accepted {
			return apperrors.NewPreconditionFailed("request is no longer open", nil)
		}

		donation = d
		request = req
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept request: %w", err)
	}

	s.auditor.Log(ctx, donor.ID, "accept", "request", request.ID, model.JSONMap{
		"donation_id": donation.ID.String(),
		"blood_group": request.BloodGroup,
	})

	s.notifyRequester(ctx, request, donor)

	return donation, nil
}

// MarkFulfilled completes the lifecycle: request to fulfilled, linked
// donation (if any) to completed, linked donor's count +1. An already
// fulfilled request is rejected, so the increment can never apply twice.
func (s *Service) MarkFulfilled(ctx context.Context, requestID uuid.UUID, actorID uuid.UUID) error {
	var request *model.Request

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		req, err := s.requests.GetForUpdateTx(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if req.RequesterID != actorID {
			return apperrors.Forbidden("only the requester can mark a request fulfilled", nil)
		}
		if req.Status == model.RequestStatusFulfilled {
			return apperrors.NewPreconditionFailed("request is already fulfilled", nil)
		}

		fulfilled, err := s.requests.MarkFulfilledTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if !fulfilled {
			return apperrors.NewPreconditionFailed("request is already fulfilled", nil)
		}

		if req.DonationID != nil {
			if err := s.donations.CompleteTx(ctx, tx, *req.DonationID); err != nil {
				return err
			}
		}
		if req.DonorID != nil {
			if err := s.donors.IncrementDonationCountTx(ctx, tx, *req.DonorID); err != nil {
				return err
			}
		}

		request = req
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to fulfill request: %w", err)
	}

	s.auditor.Log(ctx, actorID, "fulfill", "request", request.ID, model.JSONMap{
		"donor_id": request.DonorID,
	})

	return nil
}

// LogExternalDonation records a self-reported donation. It carries no request
// linkage and never affects any donor's donation count.
func (s *Service) LogExternalDonation(ctx context.Context, donor *model.Donor, form *model.LogExternalDonationRequest) (*model.Donation, error) {
	donatedAt, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid donation date", err)
	}

	donation := &model.Donation{
		DonorID:    donor.ID,
		DonorName:  donor.Name,
		BloodGroup: model.BloodGroup(form.BloodGroup),
		Hospital:   form.Location,
		Status:     model.DonationStatusCompleted,
		Type:       model.DonationTypeExternal,
		DonatedAt:  &donatedAt,
	}

	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("failed to log external donation: %w", err)
	}

	s.auditor.Log(ctx, donor.ID, "log_external", "donation", donation.ID, nil)

	return donation, nil
}

// notifyRequester emails the requester that a donor stepped up. Best-effort:
// failures are logged, never surfaced.
func (s *Service) notifyRequester(ctx context.Context, request *model.Request, donor *model.Donor) {
	requester, err := s.donors.Get(ctx, request.RequesterID)
	if err != nil {
		s.logger.Error(err, "Failed to load requester for accept notification",
			"request_id", request.ID.String())
		return
	}

	if err := s.emailSvc.SendRequestAccepted(ctx, requester.Email, request.PatientName, donor.Name); err != nil {
		s.logger.Error(err, "Failed to send accept notification email",
			"request_id", request.ID.String())
	}
}
