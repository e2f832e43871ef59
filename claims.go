package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the claim set carried by session tokens. The uid claim
// names the user the bearer authenticates as.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// UserID returns the user id the session was issued for
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Role returns the role recorded at issuance time
func (c *SessionClaims) Role() string {
	return c.UserRole
}

// VerificationClaims is the claim set carried by email verification tokens.
// The email claim names the address the link was sent to.
type VerificationClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// ensureTokenID guarantees every issued token carries a unique jti
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
