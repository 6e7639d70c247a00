package services

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	"github.com/lingora/lingora/pkg/composables"
	"github.com/lingora/lingora/pkg/serrors"
)

var (
	ErrInvalidExtension = serrors.NewError("INVALID_EXTENSION", "file extension is not allowed", "")
	ErrInvalidFilename  = serrors.NewError("INVALID_FILENAME", "filename is not acceptable", "")
	ErrFileTooLarge     = serrors.NewError("FILE_TOO_LARGE", "file exceeds the maximum allowed size", "")
	ErrEmptyFile        = serrors.NewError("EMPTY_FILE", "file has no content", "")
)

type StagingConfig struct {
	AllowedExtensions []string
	MaxFileSize       int64
}

// StagingService handles the first phase of the ingestion pipeline:
// session creation and audio staging. Staged bytes live in the blob store
// under the session prefix until the session expires or is purged.
type StagingService struct {
	registry staging.Registry
	blobs    blob.Store
	config   StagingConfig
}

func NewStagingService(registry staging.Registry, blobs blob.Store, config StagingConfig) *StagingService {
	return &StagingService{
		registry: registry,
		blobs:    blobs,
		config:   config,
	}
}

func (s *StagingService) CreateSession(ctx context.Context) (*staging.Session, error) {
	return s.registry.Create(ctx)
}

func (s *StagingService) GetSession(ctx context.Context, id uuid.UUID) (*staging.Session, error) {
	return s.registry.Get(ctx, id)
}

// RegisterFile validates, registers and persists one uploaded audio file.
// The returned file carries the session-unique storage key and blob ref.
// The client-supplied filename is reduced to its base name so storage keys
// never carry path segments.
func (s *StagingService) RegisterFile(
	ctx context.Context,
	sessionID uuid.UUID,
	originalFilename string,
	data []byte,
	contentType string,
) (*staging.File, error) {
	filename, err := sanitizeFilename(originalFilename)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensionAllowed(ext) {
		return nil, ErrInvalidExtension.WithDetails(originalFilename)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile.WithDetails(originalFilename)
	}
	if int64(len(data)) > s.config.MaxFileSize {
		return nil, ErrFileTooLarge.WithDetails(originalFilename)
	}
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	file, err := s.registry.Register(ctx, sessionID, &staging.File{
		ID:               uuid.New(),
		OriginalFilename: filename,
		SizeBytes:        int64(len(data)),
		ContentType:      contentType,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.blobs.Put(ctx, file.BlobRef, data, contentType); err != nil {
		// Undo the registration so the session never references bytes that
		// were not durably written.
		if rErr := s.registry.Remove(ctx, sessionID, file.StorageKey); rErr != nil {
			composables.UseLogger(ctx).
				WithError(rErr).
				WithField("storageKey", file.StorageKey).
				Error("failed to roll back file registration")
		}
		return nil, err
	}
	return file, nil
}

// GetFile returns a staged file's metadata together with its bytes.
func (s *StagingService) GetFile(ctx context.Context, sessionID uuid.UUID, storageKey string) (*staging.File, []byte, error) {
	session, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	file, ok := session.FindByStorageKey(storageKey)
	if !ok {
		return nil, nil, staging.ErrFileNotFound.WithDetails(storageKey)
	}
	data, err := s.blobs.Get(ctx, file.BlobRef)
	if err != nil {
		return nil, nil, err
	}
	return file, data, nil
}

// Purge discards a live session and its staged blobs. Expired sessions are
// left to the sweeper.
func (s *StagingService) Purge(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, file := range session.Files {
		if err := s.blobs.Delete(ctx, file.BlobRef); err != nil {
			composables.UseLogger(ctx).
				WithError(err).
				WithField("blobRef", file.BlobRef).
				Warn("failed to delete staged blob")
		}
	}
	return s.registry.Delete(ctx, sessionID)
}

// sanitizeFilename strips any directory components from a client-supplied
// filename. Browsers on Windows submit backslash-separated paths, and a
// hostile client can submit ".." segments; either way only the base name
// may reach the blob store.
func sanitizeFilename(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		return "", ErrInvalidFilename.WithDetails(name)
	}
	return base, nil
}

func (s *StagingService) extensionAllowed(ext string) bool {
	for _, allowed := range s.config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
