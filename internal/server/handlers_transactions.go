package server

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/canpog/realestate-app-sub000/internal/finance"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), agentID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if txs == nil {
		txs = []types.Transaction{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"transactions": txs, "count": len(txs)})
}

// handleCreateTransaction records a sale with its commission breakdown. The
// listing and client must belong to the agent.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	var req types.TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	var rate, split float64
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if req.AgentSplit != nil {
		split = *req.AgentSplit
	}
	breakdown, err := finance.Calculate(req.SalePrice, rate, split)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		listing *types.Listing
		client  *types.Client
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		listing, err = s.store.GetListing(ctx, agentID, req.ListingID)
		return err
	})
	g.Go(func() error {
		var err error
		client, err = s.store.GetClient(ctx, agentID, req.ClientID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, err)
		return
	}
	if listing == nil {
		s.fail(w, r, &ErrNotFound{Entity: "listing", ID: req.ListingID})
		return
	}
	if client == nil {
		s.fail(w, r, &ErrNotFound{Entity: "client", ID: req.ClientID})
		return
	}

	tx := &types.Transaction{
		AgentID:        agentID,
		ListingID:      listing.ID,
		ClientID:       client.ID,
		SalePrice:      req.SalePrice,
		CommissionRate: breakdown.CommissionRate,
		AgentSplit:     breakdown.AgentSplit,
		Breakdown:      breakdown,
	}
	if err := s.store.CreateTransaction(r.Context(), tx); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "transaction recorded",
		"transaction_id", tx.ID,
		"listing_id", tx.ListingID,
		"commission", breakdown.Commission)
	jsonResponse(w, http.StatusCreated, tx)
}
