package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// fakeStore is an in-memory Store with the same not-found conventions as
// the database: lookups return nil, nil and writes return db.ErrNotFound.
type fakeStore struct {
	mu          sync.Mutex
	agents      map[uuid.UUID]*db.AgentRecord
	listings    map[uuid.UUID]*types.Listing
	listingSeq  map[uuid.UUID]int
	clients     map[uuid.UUID]*types.Client
	notes       []types.Note
	followUps   map[uuid.UUID]*types.FollowUp
	txs         []types.Transaction
	exports     []types.PDFExport
	pingErr     error
	listingsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		agents:     make(map[uuid.UUID]*db.AgentRecord),
		listings:   make(map[uuid.UUID]*types.Listing),
		listingSeq: make(map[uuid.UUID]int),
		clients:    make(map[uuid.UUID]*types.Client),
		followUps:  make(map[uuid.UUID]*types.FollowUp),
	}
}

var fakeNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func (f *fakeStore) CreateAgent(_ context.Context, name, email, phone, passwordHash string) (*db.AgentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range f.agents {
		if a.Email == email {
			return nil, db.ErrDuplicate
		}
	}
	rec := &db.AgentRecord{
		Agent:        types.Agent{ID: uuid.New(), Name: name, Email: email, Phone: phone, CreatedAt: fakeNow, UpdatedAt: fakeNow},
		PasswordHash: passwordHash,
	}
	f.agents[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) GetAgent(_ context.Context, id uuid.UUID) (*db.AgentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetAgentByEmail(_ context.Context, email string) (*db.AgentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range f.agents {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateAgentPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[id]
	if !ok {
		return db.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (f *fakeStore) CreateListing(_ context.Context, l *types.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = uuid.New()
	l.CreatedAt, l.UpdatedAt = fakeNow, fakeNow
	cp := *l
	f.listings[l.ID] = &cp
	f.listingSeq[l.ID] = len(f.listingSeq)
	return nil
}

func (f *fakeStore) GetListing(_ context.Context, agentID, id uuid.UUID) (*types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.AgentID != agentID {
		return nil, nil
	}
	cp := *l
	cp.Images = append([]string{}, l.Images...)
	return &cp, nil
}

func (f *fakeStore) ListListings(_ context.Context, agentID uuid.UUID, filters types.ListingFilters) ([]types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listingsErr != nil {
		return nil, f.listingsErr
	}
	var out []types.Listing
	for _, l := range f.listings {
		if l.AgentID != agentID {
			continue
		}
		if filters.Status != "" && l.Status != filters.Status {
			continue
		}
		if filters.City != "" && !strings.EqualFold(l.City, filters.City) {
			continue
		}
		if filters.Type != "" && l.Type != filters.Type {
			continue
		}
		if filters.MinPrice != nil && l.Price < *filters.MinPrice {
			continue
		}
		if filters.MaxPrice != nil && l.Price > *filters.MaxPrice {
			continue
		}
		out = append(out, *l)
	}
	// Newest first, then the same LIMIT/OFFSET window the database applies.
	sort.Slice(out, func(i, j int) bool {
		return f.listingSeq[out[i].ID] > f.listingSeq[out[j].ID]
	})
	if filters.Offset > 0 {
		out = out[min(filters.Offset, len(out)):]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (f *fakeStore) UpdateListing(_ context.Context, l *types.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.listings[l.ID]
	if !ok || cur.AgentID != l.AgentID {
		return db.ErrNotFound
	}
	status, images := cur.Status, cur.Images
	*cur = *l
	cur.Status, cur.Images = status, images
	return nil
}

func (f *fakeStore) UpdateListingStatus(_ context.Context, agentID, id uuid.UUID, from, status types.ListingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.AgentID != agentID || l.Status != from {
		return db.ErrNotFound
	}
	l.Status = status
	return nil
}

func (f *fakeStore) AppendListingImage(_ context.Context, agentID, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.AgentID != agentID {
		return db.ErrNotFound
	}
	l.Images = append(l.Images, url)
	return nil
}

func (f *fakeStore) DeleteListing(_ context.Context, agentID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.AgentID != agentID {
		return db.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeStore) CreateClient(_ context.Context, c *types.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt, c.UpdatedAt = fakeNow, fakeNow
	cp := *c
	f.clients[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetClient(_ context.Context, agentID, id uuid.UUID) (*types.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok || c.AgentID != agentID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListClients(_ context.Context, agentID uuid.UUID) ([]types.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Client
	for _, c := range f.clients {
		if c.AgentID == agentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateClient(_ context.Context, c *types.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.clients[c.ID]
	if !ok || cur.AgentID != c.AgentID {
		return db.ErrNotFound
	}
	*cur = *c
	return nil
}

func (f *fakeStore) DeleteClient(_ context.Context, agentID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok || c.AgentID != agentID {
		return db.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeStore) CreateNote(_ context.Context, n *types.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = fakeNow
	f.notes = append(f.notes, *n)
	return nil
}

func (f *fakeStore) ListNotes(_ context.Context, agentID, clientID uuid.UUID) ([]types.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Note
	for _, n := range f.notes {
		if n.AgentID == agentID && n.ClientID == clientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateFollowUp(_ context.Context, fu *types.FollowUp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fu.ID = uuid.New()
	if fu.Status == "" {
		fu.Status = types.FollowUpPending
	}
	fu.CreatedAt, fu.UpdatedAt = fakeNow, fakeNow
	cp := *fu
	f.followUps[fu.ID] = &cp
	return nil
}

func (f *fakeStore) GetFollowUp(_ context.Context, agentID, id uuid.UUID) (*types.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fu, ok := f.followUps[id]
	if !ok || fu.AgentID != agentID {
		return nil, nil
	}
	cp := *fu
	return &cp, nil
}

func (f *fakeStore) ListFollowUps(_ context.Context, agentID uuid.UUID, filters types.FollowUpFilters) ([]types.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.FollowUp
	for _, fu := range f.followUps {
		if fu.AgentID != agentID {
			continue
		}
		if filters.Status != "" && fu.Status != filters.Status {
			continue
		}
		if filters.DueBefore != nil && !fu.DueAt.Before(*filters.DueBefore) {
			continue
		}
		out = append(out, *fu)
	}
	return out, nil
}

func (f *fakeStore) UpdateFollowUpStatus(_ context.Context, agentID, id uuid.UUID, from, status types.FollowUpStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fu, ok := f.followUps[id]
	if !ok || fu.AgentID != agentID || fu.Status != from {
		return db.ErrNotFound
	}
	fu.Status = status
	return nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx.ID = uuid.New()
	tx.CreatedAt = fakeNow
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeStore) ListTransactions(_ context.Context, agentID uuid.UUID) ([]types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Transaction
	for _, tx := range f.txs {
		if tx.AgentID == agentID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePDFExport(_ context.Context, e *types.PDFExport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = fakeNow
	f.exports = append(f.exports, *e)
	return nil
}

func (f *fakeStore) ListPDFExports(_ context.Context, agentID, listingID uuid.UUID) ([]types.PDFExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.PDFExport
	for _, e := range f.exports {
		if e.AgentID == agentID && e.ListingID == listingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

// setListingStatus simulates a concurrent writer.
func (f *fakeStore) setListingStatus(id uuid.UUID, status types.ListingStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[id].Status = status
}

var _ Store = (*fakeStore)(nil)
var _ Store = (*db.DB)(nil)
