package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// Recorder persists export records.
type Recorder interface {
	CreatePDFExport(ctx context.Context, e *types.PDFExport) error
}

// Service renders, uploads and records brochures.
type Service struct {
	renderer Renderer
	uploader storage.Uploader
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates an export Service.
func NewService(renderer Renderer, uploader storage.Uploader, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{renderer: renderer, uploader: uploader, recorder: recorder, logger: logger}
}

// Export renders the listing brochure to PDF, uploads it under
// exports/<listing-id>/ and records the public URL.
func (s *Service) Export(ctx context.Context, agent *types.Agent, listing *types.Listing) (*types.PDFExport, error) {
	started := time.Now()

	page, err := RenderHTML(listing, agent)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, page)
	if err != nil {
		s.logger.ErrorContext(ctx, "brochure render failed", "listing_id", listing.ID, "error", err)
		return nil, err
	}

	key := storage.ExportKey(listing.ID)
	url, err := s.uploader.Upload(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf")
	if err != nil {
		s.logger.ErrorContext(ctx, "brochure upload failed", "listing_id", listing.ID, "key", key, "error", err)
		return nil, fmt.Errorf("failed to upload brochure: %w", err)
	}

	rec := &types.PDFExport{
		ListingID: listing.ID,
		AgentID:   agentID(agent, listing),
		ObjectKey: key,
		URL:       url,
	}
	if err := s.recorder.CreatePDFExport(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "brochure exported",
		"listing_id", listing.ID,
		"bytes", len(pdf),
		"duration_ms", time.Since(started).Milliseconds())
	return rec, nil
}

func agentID(agent *types.Agent, listing *types.Listing) uuid.UUID {
	if agent != nil {
		return agent.ID
	}
	return listing.AgentID
}
