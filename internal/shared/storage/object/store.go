package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Save stores the reader under the owner's namespace and returns the storage key.
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	// Open opens a stored object for reading.
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
