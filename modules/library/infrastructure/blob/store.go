package blob

import "context"

// Store is the byte-blob boundary: immutable blobs by key, no business
// rules. Retries, if any, are the implementation's concern.
type Store interface {
	// Put persists the blob and returns its reference (the key).
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}
