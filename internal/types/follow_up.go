package types

import (
	"time"

	"github.com/google/uuid"
)

// FollowUpStatus is the lifecycle state of a scheduled follow-up.
type FollowUpStatus string

// Follow-up statuses.
const (
	FollowUpPending   FollowUpStatus = "pending"
	FollowUpSnoozed   FollowUpStatus = "snoozed"
	FollowUpDone      FollowUpStatus = "done"
	FollowUpCancelled FollowUpStatus = "cancelled"
)

var followUpTransitions = map[FollowUpStatus][]FollowUpStatus{
	FollowUpPending:   {FollowUpDone, FollowUpCancelled, FollowUpSnoozed},
	FollowUpSnoozed:   {FollowUpPending},
	FollowUpDone:      nil,
	FollowUpCancelled: nil,
}

// Valid reports whether s is a known status.
func (s FollowUpStatus) Valid() bool {
	_, ok := followUpTransitions[s]
	return ok
}

// Transition returns next if the move is allowed, or a *TransitionError.
func (s FollowUpStatus) Transition(next FollowUpStatus) (FollowUpStatus, error) {
	for _, allowed := range followUpTransitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, &TransitionError{Entity: "follow-up", From: string(s), To: string(next)}
}

// FollowUp is a reminder to contact a client.
type FollowUp struct {
	ID          uuid.UUID      `json:"id"`
	AgentID     uuid.UUID      `json:"agent_id"`
	ClientID    uuid.UUID      `json:"client_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	DueAt       time.Time      `json:"due_at"`
	Status      FollowUpStatus `json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FollowUpRequest is the payload for scheduling a follow-up.
type FollowUpRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty"`
	DueAt       time.Time `json:"due_at" validate:"required"`
}

// Validate validates the FollowUpRequest.
func (r *FollowUpRequest) Validate() error {
	return validate.Struct(r)
}

// FollowUpFilters narrows a follow-up query.
type FollowUpFilters struct {
	Status    FollowUpStatus
	DueBefore *time.Time
}
