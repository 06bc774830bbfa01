package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mosswell/inkwell/internal/models"
)

// SessionManager issues and validates signed session tokens. Tokens are
// stateless: they carry the account id, role, and issue time, signed with a
// server-held secret so tampering invalidates them.
type SessionManager struct {
	secret     []byte
	expiry     time.Duration // hard expiry from issuance
	refreshAge time.Duration // reissue once the token is older than this
}

// NewSessionManager creates a SessionManager. expiry is the hard token
// lifetime; refreshAge controls sliding refresh (see NeedsRefresh).
func NewSessionManager(secret string, expiry, refreshAge time.Duration) *SessionManager {
	return &SessionManager{
		secret:     []byte(secret),
		expiry:     expiry,
		refreshAge: refreshAge,
	}
}

// Issue mints a signed session token for the user.
func (sm *SessionManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate verifies the token's signature and expiry and returns its claims.
// Any failure (bad signature, expired, malformed) means "no session".
func (sm *SessionManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return sm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return nil, models.ErrUnauthorized
	}
	if claims.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}

// NeedsRefresh reports whether an otherwise valid token is old enough to be
// reissued. A continuously active session gets a fresh token once per
// refresh interval and never hits the hard expiry; an idle session expires
// exactly one lifetime after its last issuance.
func (sm *SessionManager) NeedsRefresh(claims *models.SessionClaims) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return time.Since(claims.IssuedAt.Time) >= sm.refreshAge
}

// Expiry returns the hard token lifetime.
func (sm *SessionManager) Expiry() time.Duration {
	return sm.expiry
}
