package server

import (
	"encoding/json"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/canpog/realestate-app-sub000/internal/matching"
	"github.com/canpog/realestate-app-sub000/internal/schemas"
	"github.com/canpog/realestate-app-sub000/internal/types"
	bundled "github.com/canpog/realestate-app-sub000/schemas"
)

// handleMatchClient ranks the agent's active listings for a client. The
// client and its notes are loaded concurrently; the listing query needs the
// client's budget, so it runs after.
func (s *Server) handleMatchClient(w http.ResponseWriter, r *http.Request) {
	if s.matcher == nil {
		s.fail(w, r, &ErrUnavailable{Feature: "matching"})
		return
	}
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	clientID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	var (
		client *types.Client
		notes  []types.Note
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		client, err = s.store.GetClient(ctx, agentID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.store.ListNotes(ctx, agentID, clientID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, err)
		return
	}
	if client == nil {
		s.fail(w, r, &ErrNotFound{Entity: "client", ID: clientID})
		return
	}

	listings, err := s.store.ListListings(r.Context(), agentID, matching.CandidateQuery(client))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	bodies := make([]string, 0, len(notes))
	for _, n := range notes {
		bodies = append(bodies, n.Body)
	}

	resp := s.matcher.Match(r.Context(), client, listings, bodies...)
	jsonResponse(w, http.StatusOK, resp)
}

// handleValuation values a stored listing or manually entered params. The
// body is checked against the bundled request schema before anything else.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	if s.valuator == nil {
		s.fail(w, r, &ErrUnavailable{Feature: "valuation"})
		return
	}
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := schemas.Validate(bundled.ValuationRequest, body); err != nil {
		s.fail(w, r, err)
		return
	}
	var req types.ValuationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	var listing *types.Listing
	if req.ListingID != nil {
		listing, err = s.store.GetListing(r.Context(), agentID, *req.ListingID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if listing == nil {
			s.fail(w, r, &ErrNotFound{Entity: "listing", ID: *req.ListingID})
			return
		}
	}

	result, err := s.valuator.Valuate(r.Context(), req.Params, listing)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}
