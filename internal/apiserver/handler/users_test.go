package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.signupUser(t, "buyer@example.com")
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "buyer@example.com")
	assert.Contains(t, w.Body.String(), "admin@example.com")
	// password hashes never serialize
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAdminCreateUser_WithRoles(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/users", admin, map[string]any{
		"email":         "staff@example.com",
		"password":      "staff-password",
		"roles":         []string{"admin", "retailer"},
		"business_name": "Head Office",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	created := decodeBody(t, w)
	assert.Equal(t, "staff@example.com", created["email"])

	// the new account can reach admin routes
	w = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "staff@example.com", "password": "staff-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/users", token, nil).Code)
}

func TestAdminUpdateUser_RoleReplacement(t *testing.T) {
	env := newTestEnv(t)
	id, userToken := env.signupUser(t, "buyer@example.com")
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPut, "/api/admin/users/"+jsonID(id), admin, map[string]any{
		"roles": []string{"admin"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User updated successfully", body["message"])
	assert.Equal(t, []any{"admin"}, body["data"].(map[string]any)["roles"])

	// promoted account passes the admin gate now
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/users", userToken, nil).Code)
}

func TestAdminUpdateUser_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	id, _ := env.signupUser(t, "buyer@example.com")
	env.signupUser(t, "taken@example.com")
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPut, "/api/admin/users/"+jsonID(id), admin, map[string]any{
		"email": "taken@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	id, userToken := env.signupUser(t, "buyer@example.com")
	adminID, admin := env.adminUser(t, "admin@example.com")

	// self-deletion is blocked
	w := env.do(t, http.MethodDelete, "/api/admin/users/"+jsonID(adminID), admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/api/admin/users/"+jsonID(id), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully", decodeBody(t, w)["message"])

	// deleted account's session no longer resolves
	w = env.do(t, http.MethodGet, "/api/auth/session", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodDelete, "/api/admin/users/"+jsonID(id), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
