package model

import (
	"time"

	"github.com/google/uuid"
)

type BloodBank struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Hours     string    `db:"hours" json:"hours"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type DonationCamp struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Organizer string    `db:"organizer" json:"organizer"`
	Address   string    `db:"address" json:"address"`
	CampDate  time.Time `db:"camp_date" json:"camp_date"`
	Hours     string    `db:"hours" json:"hours"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateBloodBankRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address" binding:"required,max=300"`
	Phone   string `json:"phone" binding:"required,max=20"`
	Hours   string `json:"hours" binding:"required,max=100"`
}

type CreateDonationCampRequest struct {
	Organizer string `json:"organizer" binding:"required,max=200"`
	Address   string `json:"address" binding:"required,max=300"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Hours     string `json:"hours" binding:"required,max=100"`
}
