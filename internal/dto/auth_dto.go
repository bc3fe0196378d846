package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName"  validate:"required,min=2,max=50"`
	Email     string `json:"email"     validate:"required,email,max=100"`
	Password  string `json:"password"  validate:"required,min=6,max=40"`
}

type PharmacySignupRequest struct {
	PharmacyName       string  `json:"pharmacyName"       validate:"required,min=2,max=100"`
	RegistrationNumber string  `json:"registrationNumber" validate:"required,min=2,max=50"`
	Address            string  `json:"address"            validate:"required,min=5,max=255"`
	Phone              string  `json:"phone"              validate:"required,phone"`
	PharmacyEmail      string  `json:"pharmacyEmail"      validate:"required,email"`
	Website            *string `json:"website"            validate:"omitempty,max=255"`
	AdminFirstName     string  `json:"adminFirstName"     validate:"required,min=2,max=50"`
	AdminLastName      string  `json:"adminLastName"      validate:"required,min=2,max=50"`
	AdminEmail         string  `json:"adminEmail"         validate:"required,email"`
	AdminPassword      string  `json:"adminPassword"      validate:"required,min=6,max=40"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	ImageURL  *string   `json:"imageUrl"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

type PharmacyStaffResponse struct {
	ID           string    `json:"id"`
	PharmacyID   string    `json:"pharmacyId"`
	PharmacyName string    `json:"pharmacyName"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
}

// AuthResponse is returned by login and signup. Exactly one of User and
// PharmacyStaff is set.
type AuthResponse struct {
	Token         string                 `json:"token"`
	RefreshToken  string                 `json:"refreshToken"`
	TokenType     string                 `json:"tokenType"`
	ExpiresIn     int                    `json:"expiresIn"` // seconds
	User          *UserResponse          `json:"user,omitempty"`
	PharmacyStaff *PharmacyStaffResponse `json:"pharmacyStaff,omitempty"`
}

const (
	PrincipalTypeUser     = "user"
	PrincipalTypePharmacy = "pharmacy"
)

// ValidateResponse describes who the token belongs to.
type ValidateResponse struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
