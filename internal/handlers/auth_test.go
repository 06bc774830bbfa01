package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mosswell/inkwell/internal/auth"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/services"
	pkgauth "github.com/mosswell/inkwell/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginTestPassword = "CorrectHorse1!"

func newAuthHandler(t *testing.T, repo *services.MockUserRepository) *AuthHandler {
	t.Helper()

	logger := slog.Default()
	guard := auth.NewLockoutGuard(auth.LockoutConfig{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		BackoffBase:     time.Microsecond,
		BackoffCap:      8 * time.Microsecond,
	}, logger)
	sessions := auth.NewSessionManager("test-secret-at-least-16", 24*time.Hour, time.Hour)
	svc := services.NewAuthService(repo, guard, sessions, logger)

	return NewAuthHandler(svc, auth.CookieConfig{Secure: false, MaxAge: 24 * time.Hour})
}

func adminRepo(t *testing.T) *services.MockUserRepository {
	t.Helper()

	hash, err := pkgauth.HashPassword(loginTestPassword)
	require.NoError(t, err)

	user := services.NewTestUser("user_123", "admin@example.com", "Admin")
	user.PasswordHash = hash

	return &services.MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}
}

func loginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewBuffer(body))
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	rec := httptest.NewRecorder()
	handler.Login(rec, loginRequest(t, "admin@example.com", loginTestPassword))

	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// The response body never carries the token.
	assert.NotContains(t, rec.Body.String(), cookie.Value)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	rec := httptest.NewRecorder()
	handler.Login(rec, loginRequest(t, "admin@example.com", "wrong-password"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Nil(t, sessionCookie(rec))
}

func TestAuthHandler_Login_UnknownEmailSameResponse(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	recUnknown := httptest.NewRecorder()
	handler.Login(recUnknown, loginRequest(t, "nobody@example.com", loginTestPassword))

	recWrongPw := httptest.NewRecorder()
	handler.Login(recWrongPw, loginRequest(t, "admin@example.com", "wrong-password"))

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, recWrongPw.Body.String(), recUnknown.Body.String())
}

func TestAuthHandler_Login_LockedAccount(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest(t, "admin@example.com", "wrong-password"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	// Locked out now, even with the right password.
	rec := httptest.NewRecorder()
	handler.Login(rec, loginRequest(t, "admin@example.com", loginTestPassword))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_attempts")
	assert.Nil(t, sessionCookie(rec))
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthHandler_ChangePassword_RequiresSession(t *testing.T) {
	handler := newAuthHandler(t, adminRepo(t))

	body, _ := json.Marshal(map[string]string{
		"current_password": loginTestPassword,
		"new_password":     "EvenBetterPass2!",
	})
	req := httptest.NewRequest(http.MethodPut, "/admin/account/password", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	hash, err := pkgauth.HashPassword(loginTestPassword)
	require.NoError(t, err)
	user := services.NewTestUser("user_123", "admin@example.com", "Admin")
	user.PasswordHash = hash

	updated := false
	repo := &services.MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
			updated = true
			return nil
		},
	}
	handler := newAuthHandler(t, repo)

	body, _ := json.Marshal(map[string]string{
		"current_password": loginTestPassword,
		"new_password":     "EvenBetterPass2!",
	})
	req := httptest.NewRequest(http.MethodPut, "/admin/account/password", bytes.NewBuffer(body))

	claims := &models.SessionClaims{UserID: user.ID, Email: user.Email, Role: user.Role}
	req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, claims))

	rec := httptest.NewRecorder()
	handler.ChangePassword(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, updated)
}
