// Package identity abstracts external identity providers. The API never
// validates third-party tokens itself; it hands them to a Verifier and
// trusts the returned claims.
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Claims are the attributes the API needs from an external identity.
type Claims struct {
	Email string
	Name  string
}

// Verifier validates a raw external ID token and extracts its claims.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Claims, error)
}

// OIDCVerifier validates ID tokens against a discovered OpenID Connect
// provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuerURL and prepares a
// verifier for tokens issued to clientID.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks signature, issuer, audience and expiry, then extracts the
// email and name claims. An identity without an email is rejected since
// email is the account key.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Claims{}, err
	}
	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return Claims{}, err
	}
	if payload.Email == "" {
		return Claims{}, fmt.Errorf("id token carries no email claim")
	}
	return Claims{Email: payload.Email, Name: payload.Name}, nil
}
