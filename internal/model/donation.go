package model

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "PENDING"
	DonationAccepted  DonationStatus = "ACCEPTED"
	DonationCompleted DonationStatus = "COMPLETED"
	DonationRejected  DonationStatus = "REJECTED"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationAccepted, DonationCompleted, DonationRejected:
		return true
	}
	return false
}

// CanTransitionTo allows PENDING → {ACCEPTED, COMPLETED, REJECTED}. Staying in
// the current status is always allowed.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	if s == next {
		return true
	}
	return s == DonationPending && next != DonationPending && next.Valid()
}

type Donation struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	MedicineName  string         `gorm:"not null"`
	Quantity      int            `gorm:"not null"`
	ExpiryDate    *time.Time     `gorm:"type:date"`
	Location      *string
	Organization  *string
	Notes         *string
	Status        DonationStatus `gorm:"type:varchar(20);not null;index"`
	DonationDate  time.Time      `gorm:"not null"`
	CompletedDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Donation) TableName() string { return "donations" }

// CanDelete is true only while the donation is pending.
func (d *Donation) CanDelete() bool { return d.Status == DonationPending }

// TransitionTo moves the donation to next, stamping CompletedDate on COMPLETED.
// It returns false and leaves the donation untouched when the move is not allowed.
func (d *Donation) TransitionTo(next DonationStatus, now time.Time) bool {
	if !d.Status.CanTransitionTo(next) {
		return false
	}
	if next == DonationCompleted && d.Status != DonationCompleted {
		d.CompletedDate = &now
	}
	d.Status = next
	return true
}
