package dto

import "time"

// ProfileResponse is the full profile of the calling user.
type ProfileResponse struct {
	UserResponse
	Phone            *string        `json:"phone"`
	DateOfBirth      *string        `json:"dateOfBirth"`
	Address          *string        `json:"address"`
	BloodType        *string        `json:"bloodType"`
	Allergies        []string       `json:"allergies"`
	EmergencyContact map[string]any `json:"emergencyContact"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	FirstName        string         `json:"firstName"        validate:"required,min=2,max=50"`
	LastName         string         `json:"lastName"         validate:"required,min=2,max=50"`
	ImageURL         *string        `json:"imageUrl"         validate:"omitempty,url"`
	Phone            *string        `json:"phone"            validate:"omitempty,phone"`
	DateOfBirth      *string        `json:"dateOfBirth"      validate:"omitempty,datetime=2006-01-02"`
	Address          *string        `json:"address"          validate:"omitempty,max=255"`
	BloodType        *string        `json:"bloodType"        validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies        []string       `json:"allergies"        validate:"omitempty,dive,min=1,max=100"`
	EmergencyContact map[string]any `json:"emergencyContact"`
}
