package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse_RoundTrip(t *testing.T) {
	j := NewJWT("secret", time.Hour, 24*time.Hour)
	uid := uuid.New()

	raw, jti, err := j.Issue(uid, "a@b.com", []string{"ROLE_USER"}, TypeAccess)
	require.NoError(t, err)

	claims, err := j.Parse(raw, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)

	p, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, uid, p.UserID)
	assert.Equal(t, "a@b.com", p.Email)
	assert.True(t, p.HasRole("ROLE_USER"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), p.ExpiresAt, 5*time.Second)
}

func TestParse_RejectsWrongType(t *testing.T) {
	j := NewJWT("secret", time.Hour, 24*time.Hour)
	raw, _, err := j.Issue(uuid.New(), "a@b.com", nil, TypeRefresh)
	require.NoError(t, err)

	_, err = j.Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherSecret(t *testing.T) {
	raw, _, err := NewJWT("one", time.Hour, time.Hour).Issue(uuid.New(), "a@b.com", nil, TypeAccess)
	require.NoError(t, err)

	_, err = NewJWT("two", time.Hour, time.Hour).Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	j := NewJWT("secret", time.Minute, time.Hour)
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := j.Issue(uuid.New(), "a@b.com", nil, TypeAccess)
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
