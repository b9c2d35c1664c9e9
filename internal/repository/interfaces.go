package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jeevanrakshak/donor-api/internal/model"
)

// All repository interfaces in one file
type (
	RequestRepository interface {
		Create(ctx context.Context, req *model.Request) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, req *model.Request) error
		Get(ctx context.Context, id uuid.UUID) (*model.Request, error)
		GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Request, error)
		ListOpen(ctx context.Context) ([]*model.Request, error)
		ListAll(ctx context.Context) ([]*model.Request, error)
		ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.Request, error)
		CountOpenSince(ctx context.Context, region string, since time.Time) (int, error)
		MarkAcceptedTx(ctx context.Context, tx *sqlx.Tx, requestID, donorID uuid.UUID, donorName string, donationID uuid.UUID) (bool, error)
		MarkFulfilledTx(ctx context.Context, tx *sqlx.Tx, requestID uuid.UUID) (bool, error)
	}

	DonationRepository interface {
		Create(ctx context.Context, donation *model.Donation) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, donation *model.Donation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Donation, error)
		ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*model.Donation, error)
		CompleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	}

	DonorRepository interface {
		Create(ctx context.Context, donor *model.Donor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Donor, error)
		GetByEmail(ctx context.Context, email string) (*model.Donor, error)
		Update(ctx context.Context, donor *model.Donor) error
		SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
		Search(ctx context.Context, filter model.DonorFilter) ([]*model.Donor, error)
		Tokens(ctx context.Context, donorIDs []uuid.UUID) ([]string, error)
		RegisterToken(ctx context.Context, donorID uuid.UUID, token string) error
		TouchLastChecked(ctx context.Context, id uuid.UUID) error
		IncrementDonationCountTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
		TopDonors(ctx context.Context, limit int) ([]*model.Donor, error)
	}

	BankRepository interface {
		CreateBank(ctx context.Context, bank *model.BloodBank) error
		ListBanks(ctx context.Context) ([]*model.BloodBank, error)
		CreateCamp(ctx context.Context, camp *model.DonationCamp) error
		ListCamps(ctx context.Context) ([]*model.DonationCamp, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sql.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error)
	}
)
