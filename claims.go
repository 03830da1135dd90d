package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the minimal claim set we sign: the account id plus the
// registered iat/exp claims.
type JWTClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// UserID returns the account id
func (c *JWTClaims) UserID() string {
	return c.AccountID
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
