package staging

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
)

// MemoryRegistry keeps upload sessions in process memory. Suitable for a
// single-instance deployment; a multi-instance one needs RedisRegistry.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*staging.Session
	ttl      time.Duration
	now      func() time.Time
}

type MemoryOption func(*MemoryRegistry)

// WithClock overrides the registry clock. Tests use it to cross the TTL
// boundary without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryRegistry) {
		r.now = now
	}
}

func NewMemoryRegistry(ttl time.Duration, opts ...MemoryOption) *MemoryRegistry {
	r := &MemoryRegistry{
		sessions: make(map[uuid.UUID]*staging.Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRegistry) Create(_ context.Context) (*staging.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := staging.NewSession(r.now())
	r.sessions[session.ID] = session
	return cloneSession(session), nil
}

func (r *MemoryRegistry) Get(_ context.Context, id uuid.UUID) (*staging.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, staging.ErrSessionNotFound.WithDetails(id.String())
	}
	if session.Expired(r.ttl, r.now()) {
		return nil, staging.ErrSessionExpired.WithDetails(id.String())
	}
	return cloneSession(session), nil
}

func (r *MemoryRegistry) Register(_ context.Context, id uuid.UUID, f *staging.File) (*staging.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, staging.ErrSessionNotFound.WithDetails(id.String())
	}
	if session.Expired(r.ttl, r.now()) {
		return nil, staging.ErrSessionExpired.WithDetails(id.String())
	}

	file := *f
	file.StorageKey = staging.DeduplicateKey(session.StorageKeys(), f.OriginalFilename)
	file.BlobRef = staging.StagedBlobRef(id, file.StorageKey)
	session.Files = append(session.Files, &file)

	result := file
	return &result, nil
}

func (r *MemoryRegistry) Remove(_ context.Context, id uuid.UUID, storageKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return staging.ErrSessionNotFound.WithDetails(id.String())
	}
	for i, f := range session.Files {
		if f.StorageKey == storageKey {
			session.Files = slices.Delete(session.Files, i, i+1)
			return nil
		}
	}
	return staging.ErrFileNotFound.WithDetails(storageKey)
}

func (r *MemoryRegistry) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

func (r *MemoryRegistry) SweepExpired(_ context.Context) ([]*staging.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var evicted []*staging.Session
	for id, session := range r.sessions {
		if session.Expired(r.ttl, now) {
			evicted = append(evicted, session)
			delete(r.sessions, id)
		}
	}
	return evicted, nil
}

func cloneSession(s *staging.Session) *staging.Session {
	clone := &staging.Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Files:     make([]*staging.File, len(s.Files)),
	}
	for i, f := range s.Files {
		file := *f
		clone.Files[i] = &file
	}
	return clone
}
