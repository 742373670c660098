package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT custom claims. Tokens are scoped to one account.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}
