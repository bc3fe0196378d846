// Package auth issues and verifies the HS256 tokens used by the API and keeps
// refresh tokens and revoked access tokens in Redis.
package auth

import (
	"errors"
	"time"

	"pharmacare/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are embedded in every token.
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	Type   string   `json:"typ"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the caller identity.
func (c *Claims) Principal() (dto.Principal, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return dto.Principal{}, ErrInvalidToken
	}
	p := dto.Principal{UserID: id, Email: c.Email, Roles: c.Roles, TokenID: c.ID}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// JWT signs and parses tokens with a shared secret.
type JWT struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWT(secret string, accessTTL, refreshTTL time.Duration) *JWT {
	return &JWT{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (j *JWT) AccessTTL() time.Duration  { return j.accessTTL }
func (j *JWT) RefreshTTL() time.Duration { return j.refreshTTL }

// Issue signs a token of the given type and returns it with its id.
func (j *JWT) Issue(userID uuid.UUID, email string, roles []string, typ string) (token, tokenID string, err error) {
	ttl := j.accessTTL
	if typ == TypeRefresh {
		ttl = j.refreshTTL
	}
	now := j.now()
	tokenID = uuid.NewString()
	claims := &Claims{
		UserID: userID.String(),
		Email:  email,
		Roles:  roles,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	return token, tokenID, err
}

// Parse verifies signature, expiry and token type.
func (j *JWT) Parse(raw, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
