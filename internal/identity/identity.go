// Package identity adapts the external campus identity provider. It returns
// identity facts only; user creation, linking, and session management happen
// elsewhere.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken means the provider token failed verification (expired,
// malformed, wrong issuer). Recoverable: the caller may retry sign-in.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity represents a normalized external authentication identity.
type Identity struct {
	ExternalID  string // provider-scoped unique user identifier (sub)
	Email       string // verified email returned by the provider
	DisplayName string // may be empty; the directory substitutes a default
}

// Provider verifies tokens issued by an external identity provider and
// returns the identity they assert.
type Provider interface {
	// Name returns the provider identifier (e.g. "campus-sso").
	Name() string

	// Verify validates a raw provider token and returns the identity it
	// carries, or ErrInvalidToken.
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}
