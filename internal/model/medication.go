package model

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a personal medication tracked by a user.
type Medication struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description *string
	Dosage      *string
	Frequency   *string
	StartDate   *time.Time `gorm:"type:date"`
	EndDate     *time.Time `gorm:"type:date"`
	Active      bool       `gorm:"not null"`
	Stock       *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Medication) TableName() string { return "medications" }

// Reminder belongs to a user through its medication.
type Reminder struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index"`
	ReminderTime time.Time `gorm:"not null;index"`
	Notes        *string
	Completed    bool `gorm:"not null"`
	CompletedAt  *time.Time
	NotifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Medication *Medication `gorm:"foreignKey:MedicationID"`
}

func (Reminder) TableName() string { return "reminders" }

// SetCompleted stamps CompletedAt when completing without an explicit time and
// clears it when reopening.
func (r *Reminder) SetCompleted(completed bool, at *time.Time, now time.Time) {
	r.Completed = completed
	switch {
	case !completed:
		r.CompletedAt = nil
	case at != nil:
		r.CompletedAt = at
	case r.CompletedAt == nil:
		r.CompletedAt = &now
	}
}
