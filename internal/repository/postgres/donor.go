package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
)

type donorRepository struct {
	BaseRepository
}

func NewDonorRepository(base BaseRepository) repository.DonorRepository {
	return &donorRepository{base}
}

const donorColumns = `id, name, email, phone, blood_group, region, city, availability,
	   donation_count, last_checked_at, password_hash, created_at, updated_at`

func (r *donorRepository) Create(ctx context.Context, donor *model.Donor) error {
	query := `
		INSERT INTO donors (
			id, name, email, phone, blood_group, region, city, availability,
			donation_count, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	if donor.ID == uuid.Nil {
		donor.ID = uuid.New()
	}
	donor.CreatedAt = now
	donor.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		donor.ID,
		donor.Name,
		donor.Email,
		donor.Phone,
		donor.BloodGroup,
		donor.Region,
		donor.City,
		donor.Availability,
		donor.DonationCount,
		donor.PasswordHash,
		donor.CreatedAt,
		donor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create donor: %w", err)
	}
	return nil
}

func (r *donorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`

	var donor model.Donor
	err := r.db.GetContext(ctx, &donor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("donor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return &donor, nil
}

func (r *donorRepository) GetByEmail(ctx context.Context, email string) (*model.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE LOWER(email) = LOWER($1)`

	var donor model.Donor
	err := r.db.GetContext(ctx, &donor, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("donor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor by email: %w", err)
	}
	return &donor, nil
}

func (r *donorRepository) Update(ctx context.Context, donor *model.Donor) error {
	query := `
		UPDATE donors
		SET name = $1, phone = $2, blood_group = $3, region = $4, city = $5, updated_at = $6
		WHERE id = $7
	`
	donor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		donor.Name,
		donor.Phone,
		donor.BloodGroup,
		donor.Region,
		donor.City,
		donor.UpdatedAt,
		donor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("donor", nil)
	}
	return nil
}

func (r *donorRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `UPDATE donors SET availability = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, available, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("donor", nil)
	}
	return nil
}

// Search returns available donors matching every supplied filter. Absent
// filters impose no constraint.
func (r *donorRepository) Search(ctx context.Context, filter model.DonorFilter) ([]*model.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE availability = true`
	args := []interface{}{}

	if filter.BloodGroup != "" {
		args = append(args, filter.BloodGroup)
		query += fmt.Sprintf(" AND blood_group = $%d", len(args))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		query += fmt.Sprintf(" AND region = $%d", len(args))
	}
	query += " ORDER BY donation_count DESC, created_at ASC"

	var donors []*model.Donor
	if err := r.db.SelectContext(ctx, &donors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
	}
	return donors, nil
}

// Tokens returns the device tokens registered by the given donors. Each
// donor's own set is unique by the table's primary key; tokens are not
// deduplicated across donors.
func (r *donorRepository) Tokens(ctx context.Context, donorIDs []uuid.UUID) ([]string, error) {
	if len(donorIDs) == 0 {
		return nil, nil
	}

	query := `SELECT token FROM donor_tokens WHERE donor_id = ANY($1) ORDER BY donor_id, created_at`

	ids := make([]string, len(donorIDs))
	for i, id := range donorIDs {
		ids[i] = id.String()
	}

	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load donor tokens: %w", err)
	}
	return tokens, nil
}

// RegisterToken appends a device token to a donor's set. Re-registering the
// same token is a no-op.
func (r *donorRepository) RegisterToken(ctx context.Context, donorID uuid.UUID, token string) error {
	query := `
		INSERT INTO donor_tokens (donor_id, token, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (donor_id, token) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, donorID, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

func (r *donorRepository) TouchLastChecked(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE donors SET last_checked_at = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last checked: %w", err)
	}
	return nil
}

// IncrementDonationCountTx bumps the lifetime count by exactly one. Only the
// lifecycle coordinator calls this, inside the fulfillment transaction.
func (r *donorRepository) IncrementDonationCountTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `UPDATE donors SET donation_count = donation_count + 1, updated_at = $1 WHERE id = $2`

	_, err := tx.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment donation count: %w", err)
	}
	return nil
}

func (r *donorRepository) TopDonors(ctx context.Context, limit int) ([]*model.Donor, error) {
	query := `
		SELECT ` + donorColumns + `
		FROM donors
		WHERE donation_count > 0
		ORDER BY donation_count DESC
		LIMIT $1
	`
	var donors []*model.Donor
	if err := r.db.SelectContext(ctx, &donors, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list top donors: %w", err)
	}
	return donors, nil
}
