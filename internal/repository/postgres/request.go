package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
)

type requestRepository struct {
	BaseRepository
}

func NewRequestRepository(base BaseRepository) repository.RequestRepository {
	return &requestRepository{base}
}

const requestColumns = `id, requester_id, patient_name, relationship, blood_group, units,
	   hospital, location, region, urgency, medical_note, phone, needed_by,
	   status, donor_id, donor_name, donation_id, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return r.create(ctx, r.db, req)
}

func (r *requestRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, req *model.Request) error {
	return r.create(ctx, tx, req)
}

func (r *requestRepository) create(ctx context.Context, ex sqlx.ExecerContext, req *model.Request) error {
	query := `
		INSERT INTO requests (
			id, requester_id, patient_name, relationship, blood_group, units,
			hospital, location, region, urgency, medical_note, phone, needed_by,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	now := time.Now()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = model.RequestStatusOpen
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := ex.ExecContext(ctx, query,
		req.ID,
		req.RequesterID,
		req.PatientName,
		req.Relationship,
		req.BloodGroup,
		req.Units,
		req.Hospital,
		req.Location,
		req.Region,
		req.Urgency,
		req.MedicalNote,
		req.Phone,
		req.NeededBy,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *requestRepository) Get(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	var req model.Request
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

// GetForUpdateTx locks the request row for the duration of the transaction so
// concurrent lifecycle transitions serialize on it.
func (r *requestRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 FOR UPDATE`

	var req model.Request
	err := tx.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}
	return &req, nil
}

func (r *requestRepository) ListOpen(ctx context.Context) ([]*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE status = $1 ORDER BY created_at DESC`

	var requests []*model.Request
	if err := r.db.SelectContext(ctx, &requests, query, model.RequestStatusOpen); err != nil {
		return nil, fmt.Errorf("failed to list open requests: %w", err)
	}
	return requests, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests ORDER BY created_at DESC`

	var requests []*model.Request
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE requester_id = $1 ORDER BY created_at DESC`

	var requests []*model.Request
	if err := r.db.SelectContext(ctx, &requests, query, requesterID); err != nil {
		return nil, fmt.Errorf("failed to list requests by requester: %w", err)
	}
	return requests, nil
}

func (r *requestRepository) CountOpenSince(ctx context.Context, region string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM requests
		WHERE region = $1 AND status = $2 AND created_at > $3
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, region, model.RequestStatusOpen, since); err != nil {
		return 0, fmt.Errorf("failed to count new requests: %w", err)
	}
	return count, nil
}

// MarkAcceptedTx flips an open request to pending_fulfillment and records the
// accepting donor. The status guard makes the transition conditional: a false
// return means the request was no longer open at commit time.
func (r *requestRepository) MarkAcceptedTx(ctx context.Context, tx *sqlx.Tx, requestID, donorID uuid.UUID, donorName string, donationID uuid.UUID) (bool, error) {
	query := `
		UPDATE requests
		SET status = $1, donor_id = $2, donor_name = $3, donation_id = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`
	result, err := tx.ExecContext(ctx, query,
		model.RequestStatusPendingFulfillment,
		donorID,
		donorName,
		donationID,
		time.Now(),
		requestID,
		model.RequestStatusOpen,
	)
	if err != nil {
		return false, fmt.Errorf("failed to accept request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// MarkFulfilledTx flips a request to fulfilled. Guarded so an already
// fulfilled request reports false instead of re-applying the transition.
func (r *requestRepository) MarkFulfilledTx(ctx context.Context, tx *sqlx.Tx, requestID uuid.UUID) (bool, error) {
	query := `
		UPDATE requests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status <> $1
	`
	result, err := tx.ExecContext(ctx, query, model.RequestStatusFulfilled, time.Now(), requestID)
	if err != nil {
		return false, fmt.Errorf("failed to fulfill request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}
