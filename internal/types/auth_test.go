//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failedTags returns the field/tag pairs reported by a validator error.
func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validator errors, got %v", err)
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func TestCreateAgentRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CreateAgentRequest
		want    map[string]string
	}{
		{
			name:    "valid request",
			request: CreateAgentRequest{Name: "Elif Kaya", Email: "elif@example.com", Password: "password123", Phone: "+90 532 000 00 00"},
		},
		{
			name:    "valid request without phone",
			request: CreateAgentRequest{Name: "Elif Kaya", Email: "elif@example.com", Password: "password123"},
		},
		{
			name:    "missing name",
			request: CreateAgentRequest{Email: "elif@example.com", Password: "password123"},
			want:    map[string]string{"Name": "required"},
		},
		{
			name:    "invalid email",
			request: CreateAgentRequest{Name: "Elif Kaya", Email: "elif.example.com", Password: "password123"},
			want:    map[string]string{"Email": "email"},
		},
		{
			name:    "password too short",
			request: CreateAgentRequest{Name: "Elif Kaya", Email: "elif@example.com", Password: "1234567"},
			want:    map[string]string{"Password": "min"},
		},
		{
			name:    "password exactly eight characters",
			request: CreateAgentRequest{Name: "Elif Kaya", Email: "elif@example.com", Password: "12345678"},
		},
		{
			name:    "everything missing",
			request: CreateAgentRequest{},
			want:    map[string]string{"Name": "required", "Email": "required", "Password": "required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, failedTags(t, err))
		})
	}
}

func TestLoginRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		want    map[string]string
	}{
		{"valid", LoginRequest{Email: "elif@example.com", Password: "x"}, nil},
		{"missing email", LoginRequest{Password: "x"}, map[string]string{"Email": "required"}},
		{"malformed email", LoginRequest{Email: "elif", Password: "x"}, map[string]string{"Email": "email"}},
		{"missing password", LoginRequest{Email: "elif@example.com"}, map[string]string{"Password": "required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, failedTags(t, err))
		})
	}
}

func TestUpdatePasswordRequest_Validation(t *testing.T) {
	assert.NoError(t, (&UpdatePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"}).Validate())

	err := (&UpdatePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "short"}).Validate()
	assert.Equal(t, map[string]string{"NewPassword": "min"}, failedTags(t, err))

	err = (&UpdatePasswordRequest{NewPassword: "newpassword"}).Validate()
	assert.Equal(t, map[string]string{"CurrentPassword": "required"}, failedTags(t, err))
}

func TestLoginResponse_JSONShape(t *testing.T) {
	agentID := uuid.New()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	resp := LoginResponse{
		Agent: &Agent{ID: agentID, Name: "Elif Kaya", Email: "elif@example.com", CreatedAt: now, UpdatedAt: now},
		Token: "test-jwt-token-12345",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "test-jwt-token-12345", doc["token"])

	agent, ok := doc["agent"].(map[string]any)
	require.True(t, ok, "agent should be an object")
	assert.Equal(t, agentID.String(), agent["id"])
	assert.NotContains(t, agent, "phone", "empty phone is omitted")
	assert.NotContains(t, agent, "password_hash")
}
