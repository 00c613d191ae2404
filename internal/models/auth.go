package models

import (
	"github.com/golang-jwt/jwt/v5"
)

const TokenTypeAccess = "access"

// TokenClaims is the only token schema issued by the API. The account id is
// carried in the registered "sub" claim.
type TokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the account id the token is bound to.
func (c *TokenClaims) UserID() string {
	return c.Subject
}
