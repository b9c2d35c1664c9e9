package model

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
)

type DonationType string

const (
	// DonationTypePlatform is created through the accept flow and always
	// references exactly one request.
	DonationTypePlatform DonationType = "platform"
	// DonationTypeExternal is self-reported, never references a request and
	// never affects a donor's donation count.
	DonationTypeExternal DonationType = "external"
)

type Donation struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	DonorID       uuid.UUID      `db:"donor_id" json:"donor_id"`
	DonorName     string         `db:"donor_name" json:"donor_name"`
	BloodGroup    BloodGroup     `db:"blood_group" json:"blood_group"`
	RequestID     *uuid.UUID     `db:"request_id" json:"request_id,omitempty"`
	RecipientName string         `db:"recipient_name" json:"recipient_name,omitempty"`
	Hospital      string         `db:"hospital" json:"hospital,omitempty"`
	Status        DonationStatus `db:"status" json:"status"`
	Type          DonationType   `db:"type" json:"type"`
	DonatedAt     *time.Time     `db:"donated_at" json:"donated_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// LogExternalDonationRequest is the self-reported donation form.
type LogExternalDonationRequest struct {
	BloodGroup string `json:"blood_group" binding:"required,bloodgroup"`
	Location   string `json:"location" binding:"required,max=300"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
}
