package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"orgaccount-backend/shared/config"
)

// ObjectStorage stores an uploaded blob and returns a public URI for it.
type ObjectStorage interface {
	Store(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

// MinIOStorage is the MinIO-backed ObjectStorage.
type MinIOStorage struct {
	client     *minio.Client
	serverURL  string
	bucketName string
}

func NewMinIOStorage(cfg *config.Config) (*MinIOStorage, error) {
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %v", err)
	}

	minioClient, err := minio.New(parsedURL.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	s := &MinIOStorage{
		client:     minioClient,
		serverURL:  cfg.MinIOServerURL,
		bucketName: cfg.MinIOBucketName,
	}

	if err := s.initializeBucket(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *MinIOStorage) initializeBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	}

	return nil
}

// Store uploads the blob and returns its public URI.
func (s *MinIOStorage) Store(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %v", objectName, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.serverURL, s.bucketName, objectName), nil
}
