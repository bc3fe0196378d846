package dto

import "time"

// ─── Medications ─────────────────────────────────────────────────────────────

type MedicationRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=150"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Dosage      *string `json:"dosage"      validate:"omitempty,max=100"`
	Frequency   *string `json:"frequency"   validate:"omitempty,max=100"`
	StartDate   *string `json:"startDate"   validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate"     validate:"omitempty,datetime=2006-01-02"`
	Active      *bool   `json:"active"`
	Stock       *int    `json:"stock"       validate:"omitempty,min=0"`
}

type MedicationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Dosage      *string   `json:"dosage"`
	Frequency   *string   `json:"frequency"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	Active      bool      `json:"active"`
	Stock       *int      `json:"stock"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ─── Reminders ───────────────────────────────────────────────────────────────

type ReminderRequest struct {
	MedicationID string     `json:"medicationId" validate:"required,uuid"`
	ReminderTime time.Time  `json:"reminderTime" validate:"required"`
	Notes        *string    `json:"notes"        validate:"omitempty,max=500"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
}

// PendingRange is bound from GET /reminders/pending; zero values default to now → now+24h.
type PendingRange struct {
	Start time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end"   time_format:"2006-01-02T15:04:05Z07:00"`
}

type ReminderResponse struct {
	ID             string     `json:"id"`
	MedicationID   string     `json:"medicationId"`
	MedicationName string     `json:"medicationName"`
	ReminderTime   time.Time  `json:"reminderTime"`
	Notes          *string    `json:"notes"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ─── Family ──────────────────────────────────────────────────────────────────

type FamilyMemberRequest struct {
	Name               string  `json:"name"               validate:"required,min=1,max=100"`
	Relationship       string  `json:"relationship"       validate:"required,min=1,max=50"`
	Age                int     `json:"age"                validate:"required,min=1,max=120"`
	CanViewMedications *bool   `json:"canViewMedications"`
	CanEditMedications bool    `json:"canEditMedications"`
	CanManageReminders bool    `json:"canManageReminders"`
	Status             *string `json:"status"             validate:"omitempty,max=20"`
}

type FamilyMemberResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Relationship       string    `json:"relationship"`
	Age                int       `json:"age"`
	CanViewMedications bool      `json:"canViewMedications"`
	CanEditMedications bool      `json:"canEditMedications"`
	CanManageReminders bool      `json:"canManageReminders"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ─── Donations ───────────────────────────────────────────────────────────────

type DonationRequest struct {
	MedicineName string  `json:"medicineName" validate:"required,min=1,max=150"`
	Quantity     int     `json:"quantity"     validate:"required,gt=0"`
	ExpiryDate   *string `json:"expiryDate"   validate:"omitempty,datetime=2006-01-02"`
	Location     *string `json:"location"     validate:"omitempty,max=255"`
	Organization *string `json:"organization" validate:"omitempty,max=150"`
	Notes        *string `json:"notes"        validate:"omitempty,max=500"`
	Status       *string `json:"status"       validate:"omitempty,oneof=PENDING ACCEPTED COMPLETED REJECTED"`
}

type DonationResponse struct {
	ID            string     `json:"id"`
	MedicineName  string     `json:"medicineName"`
	Quantity      int        `json:"quantity"`
	ExpiryDate    *string    `json:"expiryDate"`
	Location      *string    `json:"location"`
	Organization  *string    `json:"organization"`
	Notes         *string    `json:"notes"`
	Status        string     `json:"status"`
	DonationDate  time.Time  `json:"donationDate"`
	CompletedDate *time.Time `json:"completedDate"`
}

// ─── Medical documents ───────────────────────────────────────────────────────

// UploadDocument carries an already-read multipart file to the service.
type UploadDocument struct {
	DocumentType string
	Description  *string
	FileName     string
	ContentType  string
	Data         []byte
}

type DocumentResponse struct {
	ID               string    `json:"id"`
	DocumentType     string    `json:"documentType"`
	FileName         string    `json:"fileName"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	Checksum         string    `json:"checksum"`
	Description      *string   `json:"description"`
	UploadDate       time.Time `json:"uploadDate"`
	LastModifiedDate time.Time `json:"lastModifiedDate"`
}
