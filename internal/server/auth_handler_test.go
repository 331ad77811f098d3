package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

func TestRegister(t *testing.T) {
	h := newHarness(t)

	token, agent := h.register("Mehmet Demir", "Mehmet@Example.com")
	assert.NotEmpty(t, token)
	assert.Equal(t, "mehmet@example.com", agent.Email)
	assert.Equal(t, "Mehmet Demir", agent.Name)

	w := h.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Someone Else", "email": "mehmet@example.com", "password": "another-password",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestRegister_BadRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body any
	}{
		{"not json", "{"},
		{"missing name", map[string]string{"email": "a@example.com", "password": "long-enough"}},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "long-enough"}},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(http.MethodPost, "/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	_, agent := h.register("Zeynep Kaya", "zeynep@example.com")

	w := h.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "zeynep@example.com", "password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[types.LoginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, agent.ID, resp.Agent.ID)

	for _, creds := range []map[string]string{
		{"email": "zeynep@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "correct-horse-battery"},
	} {
		w := h.do(http.MethodPost, "/auth/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())
	}
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	token, agent := h.register("Zeynep Kaya", "zeynep@example.com")

	w := h.do(http.MethodGet, "/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.Agent](t, w)
	assert.Equal(t, agent.ID, got.ID)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("Zeynep Kaya", "zeynep@example.com")

	w := h.do(http.MethodPost, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(http.MethodGet, "/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A fresh login still works.
	w = h.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "zeynep@example.com", "password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode[types.LoginResponse](t, w).Token
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/me", nil, fresh).Code)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register("Zeynep Kaya", "zeynep@example.com")

	w := h.do(http.MethodPut, "/me/password", map[string]string{
		"current_password": "not-my-password", "new_password": "new-password-123",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "current password is incorrect")

	w = h.do(http.MethodPut, "/me/password", map[string]string{
		"current_password": "correct-horse-battery", "new_password": "short",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPut, "/me/password", map[string]string{
		"current_password": "correct-horse-battery", "new_password": "new-password-123",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Password updated successfully"}`, w.Body.String())

	w = h.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "zeynep@example.com", "password": "new-password-123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "zeynep@example.com", "password": "correct-horse-battery",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
