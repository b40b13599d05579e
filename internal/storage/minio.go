package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

type minioService struct {
	client *minio.Client
	bucket string
}

// NewMinioService creates an S3Service backed by the MinIO client.
// The bucket is created if it does not exist yet.
func NewMinioService(ctx context.Context, cfg S3Config) (S3Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT is required for the minio backend")
	}

	u, err := url.Parse(withScheme(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid S3_ENDPOINT: %w", err)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: u.Scheme == "https",
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("Created storage bucket")
	}

	return &minioService{client: client, bucket: cfg.Bucket}, nil
}

// GenerateUploadURL generates a pre-signed PUT URL
func (m *minioService) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	if err := validateContentType(contentType); err != nil {
		return "", err
	}

	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, uploadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return u.String(), nil
}

// GenerateDownloadURL generates a pre-signed GET URL
func (m *minioService) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, downloadURLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return u.String(), nil
}

// DownloadFile reads the whole object
func (m *minioService) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key only surfaces on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

// UploadFile stores data under key
func (m *minioService) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// New picks the backend named by backend ("s3" or "minio")
func New(ctx context.Context, backend string, cfg S3Config) (S3Service, error) {
	switch strings.ToLower(backend) {
	case "", "s3":
		return NewS3Service(cfg)
	case "minio":
		return NewMinioService(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
