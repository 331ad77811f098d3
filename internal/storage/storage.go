// Package storage keeps listing photos and brochure PDFs in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned by NoopUploader.
var ErrNotConfigured = errors.New("object storage is not configured")

// ErrUnsupportedImage is returned for uploads that are not a known image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Uploader stores content under key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ImageContentType returns the content type for an image file name.
func ImageContentType(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	ct, ok := imageTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	return ct, nil
}

// ListingImageKey returns listings/<listing-id>/<random><ext>.
func ListingImageKey(listingID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return fmt.Sprintf("listings/%s/%s%s", listingID, uuid.NewString(), ext)
}

// ExportKey returns exports/<listing-id>/<random>.pdf.
func ExportKey(listingID uuid.UUID) string {
	return fmt.Sprintf("exports/%s/%s.pdf", listingID, uuid.NewString())
}

func cleanKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("storage: object key is required")
	}
	return key, nil
}

// NoopUploader rejects every upload.
type NoopUploader struct{}

// Upload implements Uploader.
func (NoopUploader) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

// Object is a stored blob held by MemoryUploader.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryUploader keeps objects in memory. Used by tests and the CLI when no
// bucket is configured.
type MemoryUploader struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]Object
}

// Upload implements Uploader.
func (m *MemoryUploader) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("storage: read content: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]Object)
	}
	m.objects[key] = Object{Data: buf.Bytes(), ContentType: contentType}
	return strings.TrimRight(m.BaseURL, "/") + "/" + key, nil
}

// Get returns a stored object.
func (m *MemoryUploader) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns how many objects are stored.
func (m *MemoryUploader) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var (
	_ Uploader = NoopUploader{}
	_ Uploader = (*MemoryUploader)(nil)
)
