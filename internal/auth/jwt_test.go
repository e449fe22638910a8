package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	userID := uuid.New()
	sessionID := uuid.New().String()

	token, err := svc.Generate(sessionID, userID, "ada@campus.example", "student")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@campus.example", claims.Email)
	assert.Equal(t, "student", claims.Role)
}

func TestJWTValidateRejects(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	other := NewJWTService("other-secret", 24)
	expired := NewJWTService("test-secret", -1)

	wrongSecret, err := other.Generate(uuid.New().String(), uuid.New(), "a@b.c", "student")
	require.NoError(t, err)
	expiredToken, err := expired.Generate(uuid.New().String(), uuid.New(), "a@b.c", "student")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": wrongSecret,
		"expired":      expiredToken,
	} {
		t.Run(name, func(t *testing.T) {
			claims, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword("s3cret", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret", "not-a-hash"))
}
