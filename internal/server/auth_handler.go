package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/canpog/realestate-app-sub000/internal/server/middleware"
	"github.com/canpog/realestate-app-sub000/internal/session"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	agents     *AgentService
	jwtService *JWTService
	sessions   session.Store
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(agents *AgentService, jwtService *JWTService, sessions session.Store, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		agents:     agents,
		jwtService: jwtService,
		sessions:   sessions,
		logger:     logger,
	}
}

// Register handles agent registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateAgentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, validationError(err))
		return
	}

	agent, err := h.agents.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.issue(w, r, http.StatusCreated, agent)
}

// Login handles agent login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, validationError(err))
		return
	}

	agent, err := h.agents.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, agent)
}

// Logout revokes the token the request was made with until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r)
	if !ok || token.ID == "" {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.sessions.Revoke(r.Context(), token.ID, token.ExpiresAt); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated agent.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	agentID, err := middleware.GetAgentID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	agent, err := h.agents.Get(r.Context(), agentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, agent)
}

// UpdatePassword changes the authenticated agent's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	agentID, err := middleware.GetAgentID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, validationError(err))
		return
	}

	if err := h.agents.UpdatePassword(r.Context(), agentID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, status int, agent *types.Agent) {
	token, err := h.jwtService.GenerateToken(agent.ID)
	if err != nil {
		h.fail(w, r, fmt.Errorf("failed to generate token: %w", err))
		return
	}
	jsonResponse(w, status, types.LoginResponse{Agent: agent, Token: token})
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "auth request failed", "path", r.URL.Path, "error", err)
	}
	jsonResponse(w, status, newErrorBody(err, status))
}

// validationError turns the first validator failure into an *ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}
