package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	stagingstore "github.com/lingora/lingora/modules/library/infrastructure/staging"
)

func TestStagingSweeper_Sweep(t *testing.T) {
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	registry := stagingstore.NewMemoryRegistry(time.Hour, stagingstore.WithClock(clock.Now))
	blobs := blob.NewLocalStore(t.TempDir())
	staged := NewStagingService(registry, blobs, StagingConfig{
		AllowedExtensions: []string{".mp3"},
		MaxFileSize:       1 << 20,
	})
	sweeper := NewStagingSweeper(registry, blobs, time.Minute)

	old, err := staged.CreateSession(ctx)
	require.NoError(t, err)
	oldFile, err := staged.RegisterFile(ctx, old.ID, "old.mp3", []byte("x"), "audio/mpeg")
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Hour)

	fresh, err := staged.CreateSession(ctx)
	require.NoError(t, err)
	freshFile, err := staged.RegisterFile(ctx, fresh.ID, "fresh.mp3", []byte("y"), "audio/mpeg")
	require.NoError(t, err)

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = registry.Get(ctx, old.ID)
	require.ErrorIs(t, err, staging.ErrSessionNotFound)
	_, err = blobs.Get(ctx, oldFile.BlobRef)
	require.ErrorIs(t, err, blob.ErrBlobNotFound)

	// The live session and its bytes are untouched.
	_, err = registry.Get(ctx, fresh.ID)
	require.NoError(t, err)
	_, err = blobs.Get(ctx, freshFile.BlobRef)
	require.NoError(t, err)

	// Sweeping again removes nothing.
	removed, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStagingSweeper_BlobFaultDoesNotFailSweep(t *testing.T) {
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	registry := stagingstore.NewMemoryRegistry(time.Hour, stagingstore.WithClock(clock.Now))
	// A registry entry whose blob was never written: Delete on the local
	// store is a no-op, but a store that errors must not break the sweep
	// either. Use a missing blob to exercise the tolerant path.
	session, err := registry.Create(ctx)
	require.NoError(t, err)
	_, err = registry.Register(ctx, session.ID, &staging.File{OriginalFilename: "ghost.mp3"})
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Hour)

	sweeper := NewStagingSweeper(registry, blob.NewLocalStore(t.TempDir()), time.Minute)
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
