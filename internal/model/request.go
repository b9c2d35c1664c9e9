package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusOpen               RequestStatus = "open"
	RequestStatusPendingFulfillment RequestStatus = "pending_fulfillment"
	RequestStatusFulfilled          RequestStatus = "fulfilled"
)

type Urgency string

const (
	UrgencyCritical Urgency = "Critical"
	UrgencyUrgent   Urgency = "Urgent"
	UrgencyNormal   Urgency = "Normal"
)

// Request is a blood request posted by a requester. Status only moves
// forward: open -> pending_fulfillment -> fulfilled.
type Request struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	RequesterID  uuid.UUID     `db:"requester_id" json:"requester_id"`
	PatientName  string        `db:"patient_name" json:"patient_name"`
	Relationship string        `db:"relationship" json:"relationship,omitempty"`
	BloodGroup   BloodGroup    `db:"blood_group" json:"blood_group"`
	Units        int           `db:"units" json:"units"`
	Hospital     string        `db:"hospital" json:"hospital"`
	Location     string        `db:"location" json:"location"`
	Region       string        `db:"region" json:"region"`
	Urgency      Urgency       `db:"urgency" json:"urgency"`
	MedicalNote  string        `db:"medical_note" json:"medical_note,omitempty"`
	Phone        string        `db:"phone" json:"phone"`
	NeededBy     *time.Time    `db:"needed_by" json:"needed_by,omitempty"`
	Status       RequestStatus `db:"status" json:"status"`
	DonorID      *uuid.UUID    `db:"donor_id" json:"donor_id,omitempty"`
	DonorName    *string       `db:"donor_name" json:"donor_name,omitempty"`
	DonationID   *uuid.UUID    `db:"donation_id" json:"donation_id,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

type CreateRequestRequest struct {
	PatientName  string `json:"patient_name" binding:"required,max=120"`
	Relationship string `json:"relationship" binding:"max=60"`
	BloodGroup   string `json:"blood_group" binding:"required,bloodgroup"`
	Units        int    `json:"units" binding:"required,gte=1,lte=20"`
	Hospital     string `json:"hospital" binding:"required,max=200"`
	Location     string `json:"location" binding:"required,max=300"`
	Region       string `json:"region" binding:"required,max=100"`
	Urgency      string `json:"urgency" binding:"required,oneof=Critical Urgent Normal"`
	MedicalNote  string `json:"medical_note" binding:"max=1000"`
	Phone        string `json:"phone" binding:"required,max=20"`
	NeededBy     string `json:"needed_by" binding:"omitempty,datetime=2006-01-02"`
}

// RequestCreatedEvent is the outbox payload emitted when a request is
// created. The dispatcher only needs the matching fields.
type RequestCreatedEvent struct {
	RequestID  uuid.UUID  `json:"request_id"`
	BloodGroup BloodGroup `json:"blood_group"`
	Region     string     `json:"region"`
	Urgency    Urgency    `json:"urgency"`
	CreatedAt  time.Time  `json:"created_at"`
}
