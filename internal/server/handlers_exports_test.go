package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canpog/realestate-app-sub000/internal/export"
	"github.com/canpog/realestate-app-sub000/internal/obs"
	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

type fakeRenderer struct {
	html []byte
	err  error
}

func (r *fakeRenderer) RenderPDF(_ context.Context, html []byte) ([]byte, error) {
	r.html = html
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 brochure"), nil
}

func withExporter(renderer export.Renderer, uploader storage.Uploader) func(*Deps) {
	return func(d *Deps) {
		d.Exporter = export.NewService(renderer, uploader, d.Store, obs.Discard())
	}
}

func TestCreateExport(t *testing.T) {
	renderer := &fakeRenderer{}
	uploader := &storage.MemoryUploader{BaseURL: "https://cdn.example.com/crm"}
	h := newHarness(t, withExporter(renderer, uploader))
	token, agent := h.register("Ayşe Yılmaz", "ayse@example.com")
	listing := h.createListing(token, sampleListing("Moda'da bahçeli daire", "İstanbul", 8_500_000))
	path := "/listings/" + listing.ID.String() + "/exports"

	w := h.do(http.MethodPost, path, nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[types.PDFExport](t, w)
	assert.Equal(t, listing.ID, rec.ListingID)
	assert.Equal(t, agent.ID, rec.AgentID)
	assert.True(t, strings.HasPrefix(rec.ObjectKey, "exports/"+listing.ID.String()+"/"))
	assert.Equal(t, "https://cdn.example.com/crm/"+rec.ObjectKey, rec.URL)

	obj, ok := uploader.Get(rec.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, "%PDF-1.7 brochure", string(obj.Data))

	page := string(renderer.html)
	assert.Contains(t, page, "Moda&#39;da bahçeli daire")
	assert.Contains(t, page, "Ayşe Yılmaz")

	w = h.do(http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Exports []types.PDFExport `json:"exports"`
		Count   int               `json:"count"`
	}](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, rec.ID, resp.Exports[0].ID)
}

func TestCreateExport_Failures(t *testing.T) {
	t.Run("render fails", func(t *testing.T) {
		h := newHarness(t, withExporter(&fakeRenderer{err: errors.New("chrome crashed")}, &storage.MemoryUploader{}))
		token, _ := h.register("Ayşe Yılmaz", "ayse@example.com")
		listing := h.createListing(token, sampleListing("Daire", "İzmir", 1_000_000))

		w := h.do(http.MethodPost, "/listings/"+listing.ID.String()+"/exports", nil, token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, h.store.exports)
	})

	t.Run("no storage", func(t *testing.T) {
		h := newHarness(t, withExporter(&fakeRenderer{}, storage.NoopUploader{}))
		token, _ := h.register("Ayşe Yılmaz", "ayse@example.com")
		listing := h.createListing(token, sampleListing("Daire", "İzmir", 1_000_000))

		w := h.do(http.MethodPost, "/listings/"+listing.ID.String()+"/exports", nil, token)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("no exporter", func(t *testing.T) {
		h := newHarness(t)
		token, _ := h.register("Ayşe Yılmaz", "ayse@example.com")
		listing := h.createListing(token, sampleListing("Daire", "İzmir", 1_000_000))

		w := h.do(http.MethodPost, "/listings/"+listing.ID.String()+"/exports", nil, token)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"error":"pdf export is not configured"}`, w.Body.String())
	})

	t.Run("other agent", func(t *testing.T) {
		h := newHarness(t, withExporter(&fakeRenderer{}, &storage.MemoryUploader{}))
		token, _ := h.register("Ayşe Yılmaz", "ayse@example.com")
		other, _ := h.register("Can Öztürk", "can@example.com")
		listing := h.createListing(token, sampleListing("Daire", "İzmir", 1_000_000))

		w := h.do(http.MethodPost, "/listings/"+listing.ID.String()+"/exports", nil, other)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
