package staging

import (
	"time"

	"github.com/google/uuid"
)

// File is one staged audio blob. Immutable once registered.
type File struct {
	ID               uuid.UUID `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	// StorageKey is unique within the session; derived from
	// OriginalFilename plus a deduplication suffix.
	StorageKey  string `json:"storageKey"`
	BlobRef     string `json:"blobRef"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// Session is a time-boxed holding area for uploaded audio prior to being
// referenced by a manifest. Files is append-only during the upload phase.
// The struct is kept JSON-serializable so registries can store it in an
// external keyed store.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []*File   `json:"files"`
}

// StagedBlobRef is the blob-store key a staged file lives under until its
// session expires or is purged.
func StagedBlobRef(sessionID uuid.UUID, storageKey string) string {
	return "sessions/" + sessionID.String() + "/" + storageKey
}

func NewSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		Files:     []*File{},
	}
}

func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// FindByOriginalName returns the first file registered under the given
// original filename. Re-uploads of the same name are kept as additional
// physical entries; manifests resolve to the first one.
func (s *Session) FindByOriginalName(name string) (*File, bool) {
	for _, f := range s.Files {
		if f.OriginalFilename == name {
			return f, true
		}
	}
	return nil, false
}

func (s *Session) FindByStorageKey(key string) (*File, bool) {
	for _, f := range s.Files {
		if f.StorageKey == key {
			return f, true
		}
	}
	return nil, false
}

func (s *Session) StorageKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(s.Files))
	for _, f := range s.Files {
		keys[f.StorageKey] = struct{}{}
	}
	return keys
}
