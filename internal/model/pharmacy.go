package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole is the role of a user inside one pharmacy.
type StaffRole string

const (
	StaffAdmin      StaffRole = "ADMIN"
	StaffPharmacist StaffRole = "PHARMACIST"
	StaffCashier    StaffRole = "CASHIER"
)

func (r StaffRole) Valid() bool {
	switch r {
	case StaffAdmin, StaffPharmacist, StaffCashier:
		return true
	}
	return false
}

type Pharmacy struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string    `gorm:"not null"`
	RegistrationNumber string    `gorm:"uniqueIndex;not null"`
	Address            string    `gorm:"not null"`
	Phone              string    `gorm:"not null"`
	Email              string    `gorm:"not null"`
	Website            *string
	Active             bool      `gorm:"not null"`
	OwnerID            uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Owner *User `gorm:"foreignKey:OwnerID"`
}

func (Pharmacy) TableName() string { return "pharmacies" }

// PharmacyStaff links a user to a pharmacy. Only active rows grant access.
type PharmacyStaff struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PharmacyID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Role       StaffRole `gorm:"type:varchar(20);not null"`
	Active     bool      `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Pharmacy *Pharmacy `gorm:"foreignKey:PharmacyID"`
	User     *User     `gorm:"foreignKey:UserID"`
}

func (PharmacyStaff) TableName() string { return "pharmacy_staff" }

func (s *PharmacyStaff) IsAdmin() bool { return s.Active && s.Role == StaffAdmin }
