package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/database"

	"github.com/stretchr/testify/assert"
)

func TestSignupSigninSession_EndToEnd(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":         "Owner@Example.com",
		"password":      "secret-password",
		"business_name": "Riverside Foods",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	signup := decodeBody(t, w)
	assert.NotEmpty(t, signup["token"])
	user := signup["user"].(map[string]any)
	assert.Equal(t, "owner@example.com", user["email"])

	// email is normalized, signin with the original casing still works via
	// the stored lowercase form
	w = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email":    "owner@example.com",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = env.do(t, http.MethodGet, "/api/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	session := decodeBody(t, w)["data"].(map[string]any)["session"].(map[string]any)
	assert.Equal(t, token, session["access_token"])
	assert.Equal(t, "owner@example.com", session["user"].(map[string]any)["email"])
	assert.Greater(t, session["expires_at"].(float64), float64(0))

	// profile and role rows were created with the user
	id := uint(user["id"].(float64))
	profile, err := env.db.GetProfile(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "Riverside Foods", profile.BusinessName)
	roles, err := env.db.GetUserRoles(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, []string{database.RoleRetailer}, roles)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signupUser(t, "owner@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "OWNER@example.com",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signupUser(t, "owner@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email":    "owner@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email":    "unknown@example.com",
		"password": "whatever-123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResetRequest_NeverRevealsExistence(t *testing.T) {
	env := newTestEnv(t)
	env.signupUser(t, "owner@example.com")

	// unknown address: 200, no email
	w := env.do(t, http.MethodPost, "/api/auth/reset-request", "", map[string]any{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["email_sent"])

	// known address with no sender configured: still 200
	w = env.do(t, http.MethodPost, "/api/auth/reset-request", "", map[string]any{
		"email": "owner@example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["email_sent"])
}

func TestReset_TokenLifecycle(t *testing.T) {
	env := newTestEnv(t)
	id, _ := env.signupUser(t, "owner@example.com")

	// seed a token directly; reset-request generates an opaque one and only
	// ever hands it out by email
	row := &database.ResetToken{
		UserID:    id,
		Token:     "11111111-2222-3333-4444-555555555555",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	assert.NoError(t, env.db.CreateResetToken(context.Background(), row))

	w := env.do(t, http.MethodPost, "/api/auth/reset", "", map[string]any{
		"token":    row.Token,
		"password": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// old password no longer works, new one does
	w = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "owner@example.com", "password": "secret-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "owner@example.com", "password": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// token is single use
	w = env.do(t, http.MethodPost, "/api/auth/reset", "", map[string]any{
		"token":    row.Token,
		"password": "yet-another-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCredentials_PasswordChange(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupUser(t, "owner@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/update", token, map[string]any{
		"password": "replacement-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "owner@example.com", "password": "replacement-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSession_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/auth/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
