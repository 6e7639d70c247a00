package staging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ExpiredBoundary(t *testing.T) {
	ttl := 2 * time.Hour
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(created)

	assert.False(t, s.Expired(ttl, created.Add(ttl-time.Second)))
	assert.False(t, s.Expired(ttl, created.Add(ttl)))
	assert.True(t, s.Expired(ttl, created.Add(ttl+time.Second)))
}

func TestSession_FindByOriginalName_ReturnsFirstEntry(t *testing.T) {
	s := NewSession(time.Now())
	s.Files = append(s.Files,
		&File{OriginalFilename: "a.mp3", StorageKey: "a.mp3"},
		&File{OriginalFilename: "a.mp3", StorageKey: "a_1.mp3"},
	)

	f, ok := s.FindByOriginalName("a.mp3")
	require.True(t, ok)
	assert.Equal(t, "a.mp3", f.StorageKey)

	_, ok = s.FindByOriginalName("b.mp3")
	assert.False(t, ok)
}

func TestSession_FindByStorageKey(t *testing.T) {
	s := NewSession(time.Now())
	s.Files = append(s.Files,
		&File{OriginalFilename: "a.mp3", StorageKey: "a.mp3"},
		&File{OriginalFilename: "a.mp3", StorageKey: "a_1.mp3"},
	)

	f, ok := s.FindByStorageKey("a_1.mp3")
	require.True(t, ok)
	assert.Equal(t, "a.mp3", f.OriginalFilename)

	keys := s.StorageKeys()
	assert.Len(t, keys, 2)
	_, ok = keys["a_1.mp3"]
	assert.True(t, ok)
}
