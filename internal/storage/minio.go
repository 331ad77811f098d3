package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig describes the bucket uploads go to.
type MinioConfig struct {
	Endpoint       string
	PublicEndpoint string // base of returned URLs; defaults to Endpoint
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

// MinioUploader uploads to MinIO or any S3-compatible service.
type MinioUploader struct {
	client     *minio.Client
	bucket     string
	publicBase string
	logger     *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

// NewMinioUploader creates an uploader. The bucket is created lazily on the
// first upload and made publicly readable so URLs can be shared with clients.
func NewMinioUploader(cfg MinioConfig, logger *slog.Logger) (*MinioUploader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("storage: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}

	return &MinioUploader{
		client:     client,
		bucket:     bucket,
		publicBase: publicBase(cfg),
		logger:     logger,
	}, nil
}

// Upload implements Uploader. size may be -1 when unknown.
func (u *MinioUploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if r == nil {
		return "", errors.New("storage: reader is required")
	}
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := u.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := u.client.PutObject(ctx, u.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", key, err)
	}

	objectURL := ObjectURL(u.publicBase, u.bucket, key)
	u.logger.InfoContext(ctx, "object uploaded", "bucket", u.bucket, "key", key, "bytes", info.Size)
	return objectURL, nil
}

func (u *MinioUploader) ensureBucket(ctx context.Context) error {
	u.bucketOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.bucketErr = fmt.Errorf("storage: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			u.bucketErr = fmt.Errorf("storage: create bucket: %w", err)
			return
		}
		if err := u.client.SetBucketPolicy(ctx, u.bucket, PublicReadPolicy(u.bucket)); err != nil {
			u.bucketErr = fmt.Errorf("storage: set bucket policy: %w", err)
		}
	})
	return u.bucketErr
}

// PublicReadPolicy allows anonymous GET on every object in bucket.
func PublicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// ObjectURL joins base, bucket and key.
func ObjectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(key, "/"))
}

func publicBase(cfg MinioConfig) string {
	if base := strings.TrimSpace(cfg.PublicEndpoint); base != "" {
		return base
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if cfg.UseSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ Uploader = (*MinioUploader)(nil)
