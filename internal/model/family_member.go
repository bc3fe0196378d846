package model

import (
	"time"

	"github.com/google/uuid"
)

const FamilyStatusActive = "Active"

// FamilyMember is a person the owner delegates access to.
type FamilyMember struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index"`
	Name               string    `gorm:"type:varchar(100);not null"`
	Relationship       string    `gorm:"type:varchar(50);not null"`
	Age                int       `gorm:"not null"`
	CanViewMedications bool      `gorm:"not null"`
	CanEditMedications bool      `gorm:"not null"`
	CanManageReminders bool      `gorm:"not null"`
	Status             string    `gorm:"type:varchar(20);not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (FamilyMember) TableName() string { return "family_members" }
