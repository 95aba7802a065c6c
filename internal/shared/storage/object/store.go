package object

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, storageKey, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, storageKey string) error
}

// DetectContentType sniffs the leading bytes of data.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}
