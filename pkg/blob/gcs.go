package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStore uploads media to a public Google Cloud Storage bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
	name   string
}

// NewGCSStore opens a client for the given bucket.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}
	return &GCSStore{bucket: client.Bucket(bucket), name: bucket}, nil
}

// Put streams the bytes into the bucket and returns the public object URL.
func (s *GCSStore) Put(ctx context.Context, pathHint string, r io.Reader, contentType string) (string, error) {
	object := strings.TrimPrefix(pathHint, "/")
	if object == "" {
		object = "uploads/" + uuid.NewString()
	}

	w := s.bucket.Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload object: %v", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %v", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, object), nil
}
