package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// maxImageBytes bounds a single listing photo upload.
const maxImageBytes = 10 << 20

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	filters, err := parseListingFilters(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listings, err := s.store.ListListings(r.Context(), agentID, filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if listings == nil {
		listings = []types.Listing{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"listings": listings, "count": len(listings)})
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	var req types.ListingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	listing := &types.Listing{AgentID: agentID}
	req.ApplyTo(listing)
	if err := s.store.CreateListing(r.Context(), listing); err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, listing)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, listing)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	var req types.ListingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	// Status only moves through POST /listings/{id}/status.
	req.ApplyTo(listing)
	if err := s.store.UpdateListing(r.Context(), listing); err != nil {
		s.fail(w, r, notFoundAs(err, "listing", listing.ID))
		return
	}
	jsonResponse(w, http.StatusOK, listing)
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteListing(r.Context(), agentID, id); err != nil {
		s.fail(w, r, notFoundAs(err, "listing", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListingStatus moves a listing between kanban columns.
func (s *Server) handleListingStatus(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.loadListing(w, r)
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
	target := types.ListingStatus(req.Status)
	if !target.Valid() {
		s.fail(w, r, &ErrValidation{Field: "status", Message: "unknown status " + strconv.Quote(req.Status)})
		return
	}

	next, err := listing.Status.Transition(target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.store.UpdateListingStatus(r.Context(), listing.AgentID, listing.ID, listing.Status, next)
	if errors.Is(err, db.ErrNotFound) {
		s.fail(w, r, &ErrConflict{Message: "listing status changed concurrently; reload and retry"})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "listing status changed",
		"listing_id", listing.ID, "from", listing.Status, "to", next)
	listing.Status = next
	jsonResponse(w, http.StatusOK, listing)
}

// handleUploadListingImage stores a multipart "file" and appends its URL.
func (s *Server) handleUploadListingImage(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.loadListing(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		s.fail(w, r, &ErrValidation{Field: "file", Message: "invalid multipart form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "file", Message: "file is required"})
		return
	}
	defer file.Close()

	contentType, err := storage.ImageContentType(header.Filename)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	key := storage.ListingImageKey(listing.ID, header.Filename)
	imageURL, err := s.uploader.Upload(r.Context(), key, file, header.Size, contentType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.AppendListingImage(r.Context(), listing.AgentID, listing.ID, imageURL); err != nil {
		s.fail(w, r, notFoundAs(err, "listing", listing.ID))
		return
	}

	listing.Images = append(listing.Images, imageURL)
	jsonResponse(w, http.StatusCreated, map[string]any{"url": imageURL, "listing": listing})
}

// loadListing fetches the {id} listing owned by the caller, writing the
// error response when it cannot.
func (s *Server) loadListing(w http.ResponseWriter, r *http.Request) (*types.Listing, bool) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	listing, err := s.store.GetListing(r.Context(), agentID, id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if listing == nil {
		s.fail(w, r, &ErrNotFound{Entity: "listing", ID: id})
		return nil, false
	}
	return listing, true
}

func parseListingFilters(q url.Values) (types.ListingFilters, error) {
	f := types.ListingFilters{
		City: q.Get("city"),
		Type: q.Get("type"),
	}
	if raw := q.Get("status"); raw != "" {
		f.Status = types.ListingStatus(raw)
		if !f.Status.Valid() {
			return f, &ErrValidation{Field: "status", Message: "unknown status " + strconv.Quote(raw)}
		}
	}

	var err error
	if f.MinPrice, err = optionalInt64(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalInt64(q, "max_price"); err != nil {
		return f, err
	}
	if f.Limit, err = optionalInt(q, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = optionalInt(q, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func optionalInt64(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, &ErrValidation{Field: key, Message: "must be a non-negative integer"}
	}
	return &v, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &ErrValidation{Field: key, Message: "must be a non-negative integer"}
	}
	return v, nil
}

// notFoundAs names the entity when the store reports no matching row.
func notFoundAs(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Entity: entity, ID: id}
	}
	return err
}
