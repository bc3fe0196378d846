package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Global roles carried in the JWT.
const (
	RoleUser     = "ROLE_USER"
	RolePharmacy = "ROLE_PHARMACY"
	RoleAdmin    = "ROLE_ADMIN"
)

// Role is a global authority, many2many with User through user_roles.
type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"type:varchar(30);uniqueIndex;not null"`
}

func (Role) TableName() string { return "roles" }

// User is an account able to authenticate. Customers, pharmacy staff and
// administrators are all users and differ only by roles.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	FirstName    string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	ImageURL     *string
	Enabled      bool `gorm:"not null"`

	// Profile
	Phone            *string
	DateOfBirth      *time.Time `gorm:"type:date"`
	Address          *string
	BloodType        *string                     `gorm:"type:varchar(5)"`
	Allergies        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	EmergencyContact datatypes.JSONMap           `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Roles []Role `gorm:"many2many:user_roles;"`
}

func (User) TableName() string { return "users" }

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the role names in assignment order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) FullName() string { return u.FirstName + " " + u.LastName }
