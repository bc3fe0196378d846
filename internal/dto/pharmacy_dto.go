package dto

import "time"

type PharmacyResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registrationNumber"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email"`
	Website            *string   `json:"website"`
	Active             bool      `json:"active"`
	OwnerID            string    `json:"ownerId"`
	CreatedAt          time.Time `json:"createdAt"`
}

type AddStaffRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required,oneof=ADMIN PHARMACIST CASHIER"`
}
