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

type donationRepository struct {
	BaseRepository
}

func NewDonationRepository(base BaseRepository) repository.DonationRepository {
	return &donationRepository{base}
}

const donationColumns = `id, donor_id, donor_name, blood_group, request_id, recipient_name,
	   hospital, status, type, donated_at, created_at`

func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) error {
	return r.create(ctx, r.db, donation)
}

func (r *donationRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, donation *model.Donation) error {
	return r.create(ctx, tx, donation)
}

func (r *donationRepository) create(ctx context.Context, ex sqlx.ExecerContext, donation *model.Donation) error {
	query := `
		INSERT INTO donations (
			id, donor_id, donor_name, blood_group, request_id, recipient_name,
			hospital, status, type, donated_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	donation.CreatedAt = time.Now()

	_, err := ex.ExecContext(ctx, query,
		donation.ID,
		donation.DonorID,
		donation.DonorName,
		donation.BloodGroup,
		donation.RequestID,
		donation.RecipientName,
		donation.Hospital,
		donation.Status,
		donation.Type,
		donation.DonatedAt,
		donation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}
	return nil
}

func (r *donationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`

	var donation model.Donation
	err := r.db.GetContext(ctx, &donation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("donation", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return &donation, nil
}

func (r *donationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donor_id = $1 ORDER BY created_at DESC`

	var donations []*model.Donation
	if err := r.db.SelectContext(ctx, &donations, query, donorID); err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

func (r *donationRepository) CompleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `UPDATE donations SET status = $1 WHERE id = $2`

	_, err := tx.ExecContext(ctx, query, model.DonationStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to complete donation: %w", err)
	}
	return nil
}
