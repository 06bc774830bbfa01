package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of a signed session token. Sessions are
// stateless: everything needed to authorize a request is in the token, and
// the token is only trusted when its signature and expiry check out.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
