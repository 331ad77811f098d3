package server

import (
	"net/http"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

// handleCreateExport renders the listing brochure to a stored PDF.
func (s *Server) handleCreateExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.fail(w, r, &ErrUnavailable{Feature: "pdf export"})
		return
	}
	listing, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	agent, err := s.agents.Get(r.Context(), listing.AgentID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	export, err := s.exporter.Export(r.Context(), agent, listing)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, export)
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	exports, err := s.store.ListPDFExports(r.Context(), listing.AgentID, listing.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if exports == nil {
		exports = []types.PDFExport{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"exports": exports, "count": len(exports)})
}
