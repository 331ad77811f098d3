package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// AgentStore is the part of the record store the auth flow needs.
type AgentStore interface {
	CreateAgent(ctx context.Context, name, email, phone, passwordHash string) (*db.AgentRecord, error)
	GetAgent(ctx context.Context, id uuid.UUID) (*db.AgentRecord, error)
	GetAgentByEmail(ctx context.Context, email string) (*db.AgentRecord, error)
	UpdateAgentPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AgentService provides business logic for agent authentication.
type AgentService struct {
	store          AgentStore
	passwordConfig *config.PasswordConfig
}

// NewAgentService creates a new AgentService with the given dependencies
func NewAgentService(store AgentStore, passwordConfig *config.PasswordConfig) *AgentService {
	return &AgentService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// Register creates an agent with a hashed password.
func (s *AgentService) Register(ctx context.Context, req *types.CreateAgentRequest) (*types.Agent, error) {
	existing, err := s.store.GetAgentByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec, err := s.store.CreateAgent(ctx, req.Name, req.Email, req.Phone, passwordHash)
	if errors.Is(err, db.ErrDuplicate) {
		// Lost a race with a concurrent registration.
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	agent := rec.Agent
	return &agent, nil
}

// Login authenticates an agent. Unknown emails and wrong passwords produce
// the same error.
func (s *AgentService) Login(ctx context.Context, req *types.LoginRequest) (*types.Agent, error) {
	rec, err := s.store.GetAgentByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent by email: %w", err)
	}
	if rec == nil || rec.PasswordHash == "" {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, rec.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	agent := rec.Agent
	return &agent, nil
}

// Get returns the agent profile.
func (s *AgentService) Get(ctx context.Context, agentID uuid.UUID) (*types.Agent, error) {
	rec, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if rec == nil {
		return nil, &ErrNotFound{Entity: "agent", ID: agentID}
	}
	agent := rec.Agent
	return &agent, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *AgentService) UpdatePassword(ctx context.Context, agentID uuid.UUID, currentPassword, newPassword string) error {
	rec, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to get agent: %w", err)
	}
	if rec == nil {
		return &ErrNotFound{Entity: "agent", ID: agentID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, rec.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.store.UpdateAgentPassword(ctx, agentID, newPasswordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
