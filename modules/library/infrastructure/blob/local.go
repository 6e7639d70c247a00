package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/lingora/lingora/pkg/serrors"
)

var ErrBlobNotFound = serrors.NewError("BLOB_NOT_FOUND", "blob not found", "")

// LocalStore keeps blobs as files under a root directory. Keys use "/" as
// the separator regardless of platform.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: filepath.Clean(root)}
}

// path resolves a key below the root and refuses keys whose cleaned form
// escapes it.
func (s *LocalStore) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", errors.Errorf("blob key %q resolves outside the store root", key)
	}
	return p, nil
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create blob directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write blob %q", key)
	}
	return key, nil
}

func (s *LocalStore) Get(_ context.Context, ref string) ([]byte, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound.WithDetails(ref)
		}
		return nil, errors.Wrapf(err, "failed to read blob %q", ref)
	}
	return data, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete blob %q", ref)
	}
	// Drop now-empty parent directories up to the root; best-effort.
	dir := filepath.Dir(path)
	for strings.HasPrefix(dir, s.root) && dir != s.root {
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
