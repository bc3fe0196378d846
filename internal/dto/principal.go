package dto

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated caller, built by the JWT middleware and passed
// explicitly to every service method that needs it.
type Principal struct {
	UserID    uuid.UUID
	Email     string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal carries at least one of roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}
