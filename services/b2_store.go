package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"
)

// B2Store keeps blobs in a Backblaze B2 bucket. The storage path is the B2
// object name.
type B2Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

func NewB2Store(ctx context.Context, keyID, applicationKey, bucketName string) (*B2Store, error) {
	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &B2Store{client: client, bucket: bucket}, nil
}

func (s *B2Store) Save(ctx context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	objectName := fmt.Sprintf("blobs/%s-%s", uuid.NewString(), sanitizeFilename(filename))

	w := s.bucket.Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload blob to B2: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize B2 upload: %w", err)
	}

	return objectName, nil
}

func (s *B2Store) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	r := s.bucket.Object(storagePath).NewReader(ctx)
	return r, nil
}

func (s *B2Store) Delete(ctx context.Context, storagePath string) error {
	if err := s.bucket.Object(storagePath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete blob from B2: %w", err)
	}
	return nil
}
