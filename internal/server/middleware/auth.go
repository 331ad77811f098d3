// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	agentIDKey ContextKey = "agentID"
	tokenKey   ContextKey = "token"
)

// Principal is what a validated token says about its bearer.
type Principal interface {
	GetAgentID() uuid.UUID
	GetTokenID() string
	GetExpiresAt() time.Time
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

// RevocationChecker reports whether a token ID was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Token identifies the credential a request was authenticated with.
type Token struct {
	ID        string
	ExpiresAt time.Time
}

// AuthMiddleware validates the bearer token, rejects revoked tokens and adds
// the agent ID and token to the request context. A nil checker skips the
// revocation lookup.
func AuthMiddleware(validator TokenValidator, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			principal, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			if revoked != nil && principal.GetTokenID() != "" {
				isRevoked, err := revoked.IsRevoked(r.Context(), principal.GetTokenID())
				if err != nil {
					writeError(w, http.StatusServiceUnavailable, "session store unavailable")
					return
				}
				if isRevoked {
					unauthorized(w)
					return
				}
			}

			ctx := WithAgent(r.Context(), principal.GetAgentID(), Token{
				ID:        principal.GetTokenID(),
				ExpiresAt: principal.GetExpiresAt(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAgent returns ctx carrying the authenticated agent and token.
func WithAgent(ctx context.Context, agentID uuid.UUID, token Token) context.Context {
	ctx = context.WithValue(ctx, agentIDKey, agentID)
	return context.WithValue(ctx, tokenKey, token)
}

// GetAgentID extracts the authenticated agent ID from the request context.
func GetAgentID(r *http.Request) (uuid.UUID, error) {
	agentID, ok := r.Context().Value(agentIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("agent ID not found in request context")
	}
	return agentID, nil
}

// GetToken returns the token the request was authenticated with.
func GetToken(r *http.Request) (Token, bool) {
	token, ok := r.Context().Value(tokenKey).(Token)
	return token, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	// "Bearer" is matched case-insensitively.
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
