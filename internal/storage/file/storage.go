package file

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object prefixes inside the bucket.
const (
	SubdirOriginals = "originals"
	SubdirArchives  = "archives"
)

// Storage provides an S3-compatible storage backend using MinIO. It keeps
// uploaded source images and finished export archives in one bucket under
// different prefixes.
type Storage struct {
	client     *minio.Client
	bucketName string
}

// NewStorage creates a new Storage instance connected to the specified MinIO server.
// If the bucket does not exist, it will be created automatically.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Save uploads the object under subdir/filename and returns the object path
// within the bucket. A negative size streams the object in parts.
func (s *Storage) Save(ctx context.Context, subdir, filename string, src io.Reader, size int64, contentType string) (string, error) {
	objectName := path.Join(subdir, filename)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectName, src, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save object %s: %w", objectName, err)
	}

	return objectName, nil
}

// Load retrieves an object by its path within the bucket and returns a reader.
func (s *Storage) Load(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load object %s: %w", objectPath, err)
	}

	return obj, nil
}

// Delete removes the specified object from the bucket.
func (s *Storage) Delete(ctx context.Context, objectPath string) error {
	return s.client.RemoveObject(ctx, s.bucketName, objectPath, minio.RemoveObjectOptions{})
}
