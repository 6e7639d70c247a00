package staging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
)

const sessionKeyPrefix = "library:staging:"

// registerRetries bounds optimistic-concurrency retries on Register.
const registerRetries = 8

// RedisRegistry keeps upload sessions as JSON values in Redis, one key per
// session. TTL is enforced in code rather than via EXPIRE so that the
// sweeper still sees expired sessions and can release their blobs.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

type RedisOption func(*RedisRegistry)

func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *RedisRegistry) {
		r.now = now
	}
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisRegistry {
	r := &RedisRegistry{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *RedisRegistry) Create(ctx context.Context) (*staging.Session, error) {
	session := staging.NewSession(r.now())
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, goerrors.Wrap(err, "failed to encode session")
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, 0).Err(); err != nil {
		return nil, goerrors.Wrap(err, "failed to store session")
	}
	return session, nil
}

func (r *RedisRegistry) Get(ctx context.Context, id uuid.UUID) (*staging.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, staging.ErrSessionNotFound.WithDetails(id.String())
		}
		return nil, goerrors.Wrap(err, "failed to load session")
	}

	var session staging.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, goerrors.Wrap(err, "failed to decode session")
	}
	if session.Expired(r.ttl, r.now()) {
		return nil, staging.ErrSessionExpired.WithDetails(id.String())
	}
	return &session, nil
}

func (r *RedisRegistry) Register(ctx context.Context, id uuid.UUID, f *staging.File) (*staging.File, error) {
	key := sessionKey(id)
	var registered *staging.File

	mutate := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return staging.ErrSessionNotFound.WithDetails(id.String())
			}
			return goerrors.Wrap(err, "failed to load session")
		}

		var session staging.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return goerrors.Wrap(err, "failed to decode session")
		}
		if session.Expired(r.ttl, r.now()) {
			return staging.ErrSessionExpired.WithDetails(id.String())
		}

		file := *f
		file.StorageKey = staging.DeduplicateKey(session.StorageKeys(), f.OriginalFilename)
		file.BlobRef = staging.StagedBlobRef(id, file.StorageKey)
		session.Files = append(session.Files, &file)

		payload, err := json.Marshal(&session)
		if err != nil {
			return goerrors.Wrap(err, "failed to encode session")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		registered = &file
		return nil
	}

	for i := 0; i < registerRetries; i++ {
		err := r.client.Watch(ctx, mutate, key)
		if err == nil {
			return registered, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, goerrors.New("session register contention, retries exhausted")
}

func (r *RedisRegistry) Remove(ctx context.Context, id uuid.UUID, storageKey string) error {
	key := sessionKey(id)

	mutate := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return staging.ErrSessionNotFound.WithDetails(id.String())
			}
			return goerrors.Wrap(err, "failed to load session")
		}

		var session staging.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return goerrors.Wrap(err, "failed to decode session")
		}

		found := false
		files := session.Files[:0]
		for _, file := range session.Files {
			if !found && file.StorageKey == storageKey {
				found = true
				continue
			}
			files = append(files, file)
		}
		if !found {
			return staging.ErrFileNotFound.WithDetails(storageKey)
		}
		session.Files = files

		payload, err := json.Marshal(&session)
		if err != nil {
			return goerrors.Wrap(err, "failed to encode session")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for i := 0; i < registerRetries; i++ {
		err := r.client.Watch(ctx, mutate, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return goerrors.New("session remove contention, retries exhausted")
}

func (r *RedisRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return goerrors.Wrap(err, "failed to delete session")
	}
	return nil
}

func (r *RedisRegistry) SweepExpired(ctx context.Context) ([]*staging.Session, error) {
	var evicted []*staging.Session
	now := r.now()

	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, goerrors.Wrap(err, "failed to load session")
		}

		var session staging.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, goerrors.Wrap(err, "failed to decode session")
		}
		if !session.Expired(r.ttl, now) {
			continue
		}
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return nil, goerrors.Wrap(err, "failed to evict session")
		}
		evicted = append(evicted, &session)
	}
	if err := iter.Err(); err != nil {
		return nil, goerrors.Wrap(err, "failed to scan sessions")
	}
	return evicted, nil
}
