package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalDocument stores the uploaded file inline.
type MedicalDocument struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentType     string    `gorm:"type:varchar(50);not null;index"`
	FileName         string    `gorm:"not null"`
	FileType         string    `gorm:"not null"`
	FileData         []byte    `gorm:"type:bytea;not null"`
	FileSize         int64     `gorm:"not null"`
	Checksum         string    `gorm:"type:char(64);not null"`
	Description      *string   `gorm:"type:varchar(1000)"`
	UploadDate       time.Time `gorm:"not null"`
	LastModifiedDate time.Time `gorm:"not null"`
}

func (MedicalDocument) TableName() string { return "medical_documents" }
