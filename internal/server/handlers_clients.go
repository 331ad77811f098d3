package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	clients, err := s.store.ListClients(r.Context(), agentID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if clients == nil {
		clients = []types.Client{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"clients": clients, "count": len(clients)})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	var req types.ClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	client := &types.Client{AgentID: agentID}
	req.ApplyTo(client)
	if err := s.store.CreateClient(r.Context(), client); err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, client)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, ok := s.loadClient(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, client)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	client, ok := s.loadClient(w, r)
	if !ok {
		return
	}
	var req types.ClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	req.ApplyTo(client)
	if err := s.store.UpdateClient(r.Context(), client); err != nil {
		s.fail(w, r, notFoundAs(err, "client", client.ID))
		return
	}
	jsonResponse(w, http.StatusOK, client)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteClient(r.Context(), agentID, id); err != nil {
		s.fail(w, r, notFoundAs(err, "client", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	client, ok := s.loadClient(w, r)
	if !ok {
		return
	}
	notes, err := s.store.ListNotes(r.Context(), client.AgentID, client.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if notes == nil {
		notes = []types.Note{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"notes": notes, "count": len(notes)})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	client, ok := s.loadClient(w, r)
	if !ok {
		return
	}
	var req types.NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	note := &types.Note{ClientID: client.ID, AgentID: client.AgentID, Body: req.Body}
	if err := s.store.CreateNote(r.Context(), note); err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, note)
}

func (s *Server) handleCreateFollowUp(w http.ResponseWriter, r *http.Request) {
	client, ok := s.loadClient(w, r)
	if !ok {
		return
	}
	var req types.FollowUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	followUp := &types.FollowUp{
		AgentID:     client.AgentID,
		ClientID:    client.ID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Status:      types.FollowUpPending,
	}
	if err := s.store.CreateFollowUp(r.Context(), followUp); err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, followUp)
}

// handleListFollowUps supports ?status= and ?due_before=<RFC3339>.
func (s *Server) handleListFollowUps(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}

	var filters types.FollowUpFilters
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		filters.Status = types.FollowUpStatus(raw)
		if !filters.Status.Valid() {
			s.fail(w, r, &ErrValidation{Field: "status", Message: "unknown status " + strconv.Quote(raw)})
			return
		}
	}
	if raw := q.Get("due_before"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "due_before", Message: "must be an RFC3339 timestamp"})
			return
		}
		filters.DueBefore = &due
	}

	followUps, err := s.store.ListFollowUps(r.Context(), agentID, filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if followUps == nil {
		followUps = []types.FollowUp{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"follow_ups": followUps, "count": len(followUps)})
}

func (s *Server) handleFollowUpStatus(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req types.StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}
	target := types.FollowUpStatus(req.Status)
	if !target.Valid() {
		s.fail(w, r, &ErrValidation{Field: "status", Message: "unknown status " + strconv.Quote(req.Status)})
		return
	}

	followUp, err := s.store.GetFollowUp(r.Context(), agentID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if followUp == nil {
		s.fail(w, r, &ErrNotFound{Entity: "follow-up", ID: id})
		return
	}

	next, err := followUp.Status.Transition(target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.store.UpdateFollowUpStatus(r.Context(), agentID, id, followUp.Status, next)
	if errors.Is(err, db.ErrNotFound) {
		s.fail(w, r, &ErrConflict{Message: "follow-up status changed concurrently; reload and retry"})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	followUp.Status = next
	if next == types.FollowUpDone {
		now := time.Now().UTC()
		followUp.CompletedAt = &now
	}
	jsonResponse(w, http.StatusOK, followUp)
}

// loadClient fetches the {id} client owned by the caller, writing the error
// response when it cannot.
func (s *Server) loadClient(w http.ResponseWriter, r *http.Request) (*types.Client, bool) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	client, err := s.store.GetClient(r.Context(), agentID, id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if client == nil {
		s.fail(w, r, &ErrNotFound{Entity: "client", ID: id})
		return nil, false
	}
	return client, true
}
