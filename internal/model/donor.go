package model

import (
	"time"

	"github.com/google/uuid"
)

// Donor is a registered donor profile. The identity provider's user ID is the
// primary key.
type Donor struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	Phone         string     `db:"phone" json:"phone,omitempty"`
	BloodGroup    BloodGroup `db:"blood_group" json:"blood_group"`
	Region        string     `db:"region" json:"region"`
	City          string     `db:"city" json:"city,omitempty"`
	Availability  bool       `db:"availability" json:"availability"`
	DonationCount int        `db:"donation_count" json:"donation_count"`
	LastCheckedAt *time.Time `db:"last_checked_at" json:"last_checked_at,omitempty"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// DonorFilter narrows a donor search. Absent filters impose no constraint;
// supplied filters are combined as a conjunction. Availability is always
// required.
type DonorFilter struct {
	BloodGroup BloodGroup `form:"blood_group"`
	Region     string     `form:"region"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=120"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	BloodGroup *string `json:"blood_group" binding:"omitempty,bloodgroup"`
	Region     *string `json:"region" binding:"omitempty,max=100"`
	City       *string `json:"city" binding:"omitempty,max=100"`
}

type SetAvailabilityRequest struct {
	Availability *bool `json:"availability" binding:"required"`
}

type RegisterTokenRequest struct {
	Token string `json:"token" binding:"required,max=4096"`
}

// Dashboard aggregates a donor's profile with their own requests and
// donations.
type Dashboard struct {
	Profile   *Donor      `json:"profile"`
	Requests  []*Request  `json:"requests"`
	Donations []*Donation `json:"donations"`
}
