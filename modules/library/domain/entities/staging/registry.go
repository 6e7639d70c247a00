package staging

import (
	"context"

	"github.com/google/uuid"

	"github.com/lingora/lingora/pkg/serrors"
)

var (
	ErrSessionNotFound = serrors.NewError("STAGING_SESSION_NOT_FOUND", "upload session not found", "")
	ErrSessionExpired  = serrors.NewError("STAGING_SESSION_EXPIRED", "upload session has expired", "")
	ErrFileNotFound    = serrors.NewError("STAGING_FILE_NOT_FOUND", "staged file not found", "")
)

// Registry is the keyed store of active upload sessions. It owns the
// expiration policy: Get lazily rejects expired sessions, SweepExpired
// evicts them. Implementations must be safe for concurrent use.
type Registry interface {
	Create(ctx context.Context) (*Session, error)
	// Get returns ErrSessionExpired for sessions past their TTL even if
	// still physically present, and ErrSessionNotFound otherwise.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Register assigns the file's deduplicated storage key and appends it
	// to the session atomically. The file's StorageKey field is ignored on
	// input and populated on return.
	Register(ctx context.Context, id uuid.UUID, f *File) (*File, error)
	// Remove detaches a file registered under the given storage key;
	// used to undo a registration whose blob write failed.
	Remove(ctx context.Context, id uuid.UUID, storageKey string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SweepExpired evicts every expired session and returns them so the
	// caller can release their blobs. Idempotent: a second call right
	// after returns nothing.
	SweepExpired(ctx context.Context) ([]*Session, error)
}
