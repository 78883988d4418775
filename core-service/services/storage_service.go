package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"projectflow-backend/shared/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the attachment storage backend.
type ObjectStore interface {
	Put(ctx context.Context, objectKey, contentType string, reader io.Reader, size int64) error
	Get(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectKey string) error
}

// store is the active backend; tests swap it for a fake.
var store ObjectStore

// SetObjectStore replaces the attachment storage backend.
func SetObjectStore(s ObjectStore) {
	store = s
}

type minioStore struct {
	client     *minio.Client
	bucketName string
}

// InitStorage connects to MinIO and ensures the attachment bucket exists.
func InitStorage() error {
	cfg := config.GetConfig()

	log.Printf("🔗 Connecting to MinIO: %s (SSL: %v)", cfg.MinIOEndpoint, cfg.MinIOUseSSL)

	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	s := &minioStore{
		client:     client,
		bucketName: cfg.MinIOBucketName,
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	} else {
		log.Printf("✅ MinIO bucket '%s' already exists", s.bucketName)
	}

	store = s
	return nil
}

func (s *minioStore) Put(ctx context.Context, objectKey, contentType string, reader io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) Get(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	return s.client.GetObject(ctx, s.bucketName, objectKey, minio.GetObjectOptions{})
}

func (s *minioStore) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
}
