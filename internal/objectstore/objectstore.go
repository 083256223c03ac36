// Package objectstore uploads blobs and hands back the public URL of the stored object.
package objectstore

import (
	"context"
	"io"
)

type Storage interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) error
	PublicURL(path string) string
}
