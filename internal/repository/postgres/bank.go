package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
)

type bankRepository struct {
	BaseRepository
}

func NewBankRepository(base BaseRepository) repository.BankRepository {
	return &bankRepository{base}
}

func (r *bankRepository) CreateBank(ctx context.Context, bank *model.BloodBank) error {
	query := `
		INSERT INTO blood_banks (id, name, address, phone, hours, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	bank.ID = uuid.New()
	bank.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		bank.ID, bank.Name, bank.Address, bank.Phone, bank.Hours, bank.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create blood bank: %w", err)
	}
	return nil
}

func (r *bankRepository) ListBanks(ctx context.Context) ([]*model.BloodBank, error) {
	query := `
		SELECT id, name, address, phone, hours, created_at
		FROM blood_banks
		ORDER BY created_at DESC
	`
	var banks []*model.BloodBank
	if err := r.db.SelectContext(ctx, &banks, query); err != nil {
		return nil, fmt.Errorf("failed to list blood banks: %w", err)
	}
	return banks, nil
}

func (r *bankRepository) CreateCamp(ctx context.Context, camp *model.DonationCamp) error {
	query := `
		INSERT INTO donation_camps (id, organizer, address, camp_date, hours, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	camp.ID = uuid.New()
	camp.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		camp.ID, camp.Organizer, camp.Address, camp.CampDate, camp.Hours, camp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create donation camp: %w", err)
	}
	return nil
}

func (r *bankRepository) ListCamps(ctx context.Context) ([]*model.DonationCamp, error) {
	query := `
		SELECT id, organizer, address, camp_date, hours, created_at
		FROM donation_camps
		ORDER BY created_at DESC
	`
	var camps []*model.DonationCamp
	if err := r.db.SelectContext(ctx, &camps, query); err != nil {
		return nil, fmt.Errorf("failed to list donation camps: %w", err)
	}
	return camps, nil
}
