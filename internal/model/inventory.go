package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MedicationType string

const (
	MedicationPrescription MedicationType = "PRESCRIPTION"
	MedicationOTC          MedicationType = "OVER_THE_COUNTER"
	MedicationControlled   MedicationType = "CONTROLLED_SUBSTANCE"
	MedicationDonated      MedicationType = "DONATED"
)

// ExpiringSoonWindowDays is the horizon of the "expiring soon" queries.
const ExpiringSoonWindowDays = 30

func (t MedicationType) Valid() bool {
	switch t {
	case MedicationPrescription, MedicationOTC, MedicationControlled, MedicationDonated:
		return true
	}
	return false
}

// Inventory is a stock line of one medication batch in one pharmacy.
// Deletion is soft: Active=false.
type Inventory struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PharmacyID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MedicationName    string          `gorm:"not null;index"`
	Manufacturer      *string
	BatchNumber       *string
	ExpiryDate        time.Time       `gorm:"type:date;not null"`
	Quantity          int             `gorm:"not null"`
	MinimumStockLevel int             `gorm:"not null"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active            bool            `gorm:"not null"`
	MedicationType    MedicationType  `gorm:"type:varchar(30);not null"`
	Description       *string
	DosageForm        *string
	Strength          *string
	StorageConditions *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Inventory) TableName() string { return "inventories" }

func (i *Inventory) IsLowStock() bool { return i.Quantity <= i.MinimumStockLevel }

// IsExpired compares calendar dates only.
func (i *Inventory) IsExpired(now time.Time) bool {
	return dateOnly(i.ExpiryDate).Before(dateOnly(now))
}

// IsExpiringWithin reports expiry strictly before today+days.
func (i *Inventory) IsExpiringWithin(now time.Time, days int) bool {
	return dateOnly(i.ExpiryDate).Before(dateOnly(now).AddDate(0, 0, days))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time { return dateOnly(t) }
