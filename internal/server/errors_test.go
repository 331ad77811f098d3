package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/finance"
	"github.com/canpog/realestate-app-sub000/internal/schemas"
	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/types"
	"github.com/canpog/realestate-app-sub000/internal/valuation"
)

func TestErrorMessages(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "email already registered: a@b.co", (&ErrEmailAlreadyExists{Email: "a@b.co"}).Error())
	assert.Equal(t, "invalid email or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "current password is incorrect", (&ErrPasswordMismatch{}).Error())
	assert.Equal(t, "listing not found: "+id.String(), (&ErrNotFound{Entity: "listing", ID: id}).Error())
	assert.Equal(t, "validation error: email - invalid format", (&ErrValidation{Field: "email", Message: "invalid format"}).Error())
	assert.Equal(t, "pdf export is not configured", (&ErrUnavailable{Feature: "pdf export"}).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email taken", &ErrEmailAlreadyExists{Email: "x"}, http.StatusConflict},
		{"duplicate row", fmt.Errorf("insert: %w", db.ErrDuplicate), http.StatusConflict},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"password mismatch", &ErrPasswordMismatch{}, http.StatusUnauthorized},
		{"not found", &ErrNotFound{Entity: "client"}, http.StatusNotFound},
		{"wrapped db not found", fmt.Errorf("update: %w", db.ErrNotFound), http.StatusNotFound},
		{"kanban transition", &types.TransitionError{Entity: "listing", From: "sold", To: "active"}, http.StatusConflict},
		{"concurrent change", &ErrConflict{Message: "changed"}, http.StatusConflict},
		{"request validation", &ErrValidation{Field: "id"}, http.StatusBadRequest},
		{"valuation params", &valuation.ValidationError{Fields: map[string]string{"city": "required"}}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{}, http.StatusBadRequest},
		{"commission input", &finance.InputError{Field: "rate"}, http.StatusBadRequest},
		{"password too long", config.ErrPasswordTooLong, http.StatusBadRequest},
		{"image type", fmt.Errorf("%w: %q", storage.ErrUnsupportedImage, ".gif"), http.StatusUnsupportedMediaType},
		{"no storage", storage.ErrNotConfigured, http.StatusServiceUnavailable},
		{"no renderer", &ErrUnavailable{Feature: "pdf export"}, http.StatusServiceUnavailable},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	body := newErrorBody(errors.New("pq: connection refused"), http.StatusInternalServerError)
	assert.Equal(t, errorBody{Error: "internal server error"}, body)

	body = newErrorBody(&valuation.ValidationError{Fields: map[string]string{"sqm": "gt"}}, http.StatusBadRequest)
	assert.Equal(t, map[string]string{"sqm": "gt"}, body.Fields)

	body = newErrorBody(&schemas.ValidationError{Errors: []schemas.FieldError{{Field: "params", Message: "params is required"}}}, http.StatusBadRequest)
	assert.Equal(t, "invalid request body", body.Error)
	assert.Equal(t, map[string]string{"params": "params is required"}, body.Fields)
}
