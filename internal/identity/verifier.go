// Package identity resolves bearer credentials to a stable user identity.
//
// Authentication itself is delegated: users sign in with an external
// identity provider, which issues them a signed token. This service never
// sees passwords or runs an OAuth flow — it only verifies the token's
// signature and claims, then maps the provider's stable UID to an internal
// user record.
//
// TOKEN SHAPE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"<uid>","email":...,"name":...,"picture":...}
//	- Signature: HMAC-SHA256(header+"."+payload, sharedSecret)
//
// Verification needs no provider round-trip — just the shared secret.
package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the resolved result of a verified credential: the provider's
// stable UID plus the profile fields we mirror into the users table.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Verifier maps an opaque bearer credential to an Identity, or fails.
type Verifier interface {
	Verify(tokenStr string) (*Identity, error)
}

// TokenVerifier verifies HS256 tokens issued by the identity provider.
// The shared HMAC secret must match the provider's signing key exactly.
type TokenVerifier struct {
	secret []byte
	issuer string
}

var _ Verifier = (*TokenVerifier)(nil)

// NewTokenVerifier creates a TokenVerifier for the given shared secret and
// expected issuer. The secret should be at least 32 bytes of random data in
// production; anything under 16 is rejected outright.
func NewTokenVerifier(secret, issuer string) (*TokenVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("identity: auth secret must be at least 16 characters")
	}
	if issuer == "" {
		return nil, errors.New("identity: token issuer must not be empty")
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// claims is the provider token payload. The Subject registered claim holds
// the provider's stable UID; email/name/picture carry the profile.
type claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Verify parses and verifies a bearer token string.
//
// Checks performed by the jwt library:
//   - Signature is valid (token wasn't tampered with)
//   - Token is not expired (ExpiresAt is required and in the future)
//   - Issuer matches the configured provider (rejects tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (v *TokenVerifier) Verify(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("identity: unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("identity: token expired")
		}
		return nil, fmt.Errorf("identity: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("identity: invalid token claims")
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("identity: token has no subject")
	}

	return &Identity{
		UID:         c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		PhotoURL:    c.Picture,
	}, nil
}
