package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-sso-secret"

func signSSOToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestSSOVerify(t *testing.T) {
	p := NewSSOProvider(testSecret, "campus-sso")

	token := signSSOToken(t, testSecret, jwt.MapClaims{
		"sub":   "sso-user-1",
		"email": "ada@campus.example",
		"name":  "Ada Lovelace",
		"iss":   "campus-sso",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, err := p.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sso-user-1", id.ExternalID)
	assert.Equal(t, "ada@campus.example", id.Email)
	assert.Equal(t, "Ada Lovelace", id.DisplayName)
}

func TestSSOVerifyRejects(t *testing.T) {
	p := NewSSOProvider(testSecret, "campus-sso")
	valid := jwt.MapClaims{
		"sub":   "sso-user-1",
		"email": "ada@campus.example",
		"iss":   "campus-sso",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signSSOToken(t, "other-secret", valid)},
		{"wrong issuer", signSSOToken(t, testSecret, jwt.MapClaims{
			"sub": "sso-user-1", "email": "ada@campus.example", "iss": "evil",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired", signSSOToken(t, testSecret, jwt.MapClaims{
			"sub": "sso-user-1", "email": "ada@campus.example", "iss": "campus-sso",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing subject", signSSOToken(t, testSecret, jwt.MapClaims{
			"email": "ada@campus.example", "iss": "campus-sso",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"missing email", signSSOToken(t, testSecret, jwt.MapClaims{
			"sub": "sso-user-1", "iss": "campus-sso",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := p.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, id)
		})
	}
}

func TestSSOVerifyNoIssuerCheckWhenUnset(t *testing.T) {
	p := NewSSOProvider(testSecret, "")
	token := signSSOToken(t, testSecret, jwt.MapClaims{
		"sub":   "sso-user-1",
		"email": "ada@campus.example",
		"iss":   "whatever",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, err := p.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sso-user-1", id.ExternalID)
}
