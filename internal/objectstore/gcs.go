package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSStorage stores objects in the Firebase Storage bucket.
type GCSStorage struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewGCSStorage(bucket *storage.BucketHandle, bucketName string) *GCSStorage {
	return &GCSStorage{bucket: bucket, bucketName: bucketName}
}

func (g *GCSStorage) Upload(ctx context.Context, path string, r io.Reader, contentType string) error {
	key := strings.TrimLeft(path, "/")
	if key == "" {
		return fmt.Errorf("gcs storage: empty key")
	}

	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs storage upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs storage finalize %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the Firebase download URL for an object.
func (g *GCSStorage) PublicURL(path string) string {
	key := strings.TrimLeft(path, "/")
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", g.bucketName, url.PathEscape(key))
}
