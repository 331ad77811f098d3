// Package server provides the HTTP REST API for the CRM.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/finance"
	"github.com/canpog/realestate-app-sub000/internal/schemas"
	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/types"
	"github.com/canpog/realestate-app-sub000/internal/valuation"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrNotFound indicates a record the agent does not own or that does not exist.
type ErrNotFound struct {
	Entity string
	ID     uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrConflict indicates the record changed underneath the request.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnavailable indicates an optional collaborator was not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return e.Feature + " is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailTaken   *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		notFound     *ErrNotFound
		invalid      *ErrValidation
		conflict     *ErrConflict
		unavailable  *ErrUnavailable
		transition   *types.TransitionError
		params       *valuation.ValidationError
		schemaErr    *schemas.ValidationError
		financeInput *finance.InputError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailTaken), errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &transition), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.As(err, &params), errors.As(err, &schemaErr),
		errors.As(err, &financeInput), errors.Is(err, config.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &unavailable), errors.Is(err, storage.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// newErrorBody builds the response for err. Internal errors are not echoed.
func newErrorBody(err error, status int) errorBody {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		return errorBody{Error: "internal server error"}
	}

	body := errorBody{Error: err.Error()}

	var params *valuation.ValidationError
	var schemaErr *schemas.ValidationError
	switch {
	case errors.As(err, &params):
		body.Fields = params.Fields
	case errors.As(err, &schemaErr):
		body.Error = "invalid request body"
		body.Fields = make(map[string]string, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			body.Fields[fe.Field] = fe.Message
		}
	}
	return body
}
