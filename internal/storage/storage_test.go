package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c1f0e-8a7b-4c55-9b1a-0d6f4f6b2a11")

	key := ListingImageKey(id, "Salon.JPEG")
	assert.True(t, strings.HasPrefix(key, "listings/6f1c1f0e-8a7b-4c55-9b1a-0d6f4f6b2a11/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ListingImageKey(id, "Salon.JPEG"))

	export := ExportKey(id)
	assert.True(t, strings.HasPrefix(export, "exports/6f1c1f0e-8a7b-4c55-9b1a-0d6f4f6b2a11/"))
	assert.True(t, strings.HasSuffix(export, ".pdf"))
}

func TestImageContentType(t *testing.T) {
	ct, err := ImageContentType("kat-plani.PNG")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = ImageContentType("tapu.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/crm/listings/a.jpg", ObjectURL("http://localhost:9000/", "crm", "/listings/a.jpg"))
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBase(MinioConfig{Endpoint: "minio:9000", PublicEndpoint: "https://cdn.example.com"}))
	assert.Equal(t, "http://minio:9000", publicBase(MinioConfig{Endpoint: "minio:9000"}))
	assert.Equal(t, "https://s3.example.com", publicBase(MinioConfig{Endpoint: "s3.example.com", UseSSL: true}))
	assert.Equal(t, "http://minio:9000", publicBase(MinioConfig{Endpoint: "http://minio:9000"}))
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
}

func TestPublicReadPolicy(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(PublicReadPolicy("crm")), &doc))
	assert.Contains(t, PublicReadPolicy("crm"), "arn:aws:s3:::crm/*")
}

func TestNewMinioUploader_Validation(t *testing.T) {
	_, err := NewMinioUploader(MinioConfig{Bucket: "crm"}, nil)
	assert.ErrorContains(t, err, "endpoint is required")
	_, err = NewMinioUploader(MinioConfig{Endpoint: "localhost:9000"}, nil)
	assert.ErrorContains(t, err, "bucket is required")
}

func TestMemoryUploader(t *testing.T) {
	m := &MemoryUploader{BaseURL: "http://files.test/"}
	url, err := m.Upload(context.Background(), "/exports/x.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/exports/x.pdf", url)

	obj, ok := m.Get("exports/x.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF", string(obj.Data))
	assert.Equal(t, 1, m.Len())

	_, err = m.Upload(context.Background(), " / ", strings.NewReader(""), 0, "")
	assert.Error(t, err)
}

func TestNoopUploader(t *testing.T) {
	_, err := NoopUploader{}.Upload(context.Background(), "k", strings.NewReader(""), 0, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
