package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/domain/manifest"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence"
	"github.com/lingora/lingora/pkg/composables"
	"github.com/lingora/lingora/pkg/eventbus"
	"github.com/lingora/lingora/pkg/metrics"
	"github.com/lingora/lingora/pkg/serrors"
)

var ErrCommitFailed = serrors.NewError("IMPORT_COMMIT_FAILED", "import could not be committed", "")

// CreatedItem is one speech persisted by a successful import.
type CreatedItem struct {
	Row  int    `json:"row"`
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult is the outcome of one manifest submission. Either every
// valid row was committed (ErrorCount zero) or nothing was (SuccessCount
// zero); partial outcomes do not exist.
type ImportResult struct {
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	CreatedItems []CreatedItem    `json:"createdItems"`
	Errors       []ImportRowError `json:"errors"`
}

func (r *ImportResult) Success() bool {
	return r.ErrorCount == 0
}

// ImportService orchestrates the second phase of the pipeline: manifest
// validation followed by an all-or-nothing commit of the valid rows.
type ImportService struct {
	registry   staging.Registry
	blobs      blob.Store
	speeches   speech.Repository
	tags       *TagService
	transactor persistence.Transactor
	publisher  eventbus.EventBus
	opts       manifest.Options
}

func NewImportService(
	registry staging.Registry,
	blobs blob.Store,
	speeches speech.Repository,
	tags *TagService,
	transactor persistence.Transactor,
	publisher eventbus.EventBus,
	opts manifest.Options,
) *ImportService {
	return &ImportService{
		registry:   registry,
		blobs:      blobs,
		speeches:   speeches,
		tags:       tags,
		transactor: transactor,
		publisher:  publisher,
		opts:       opts,
	}
}

// ImportManifest validates the manifest against the session and, when it
// is error-free, commits every row in a single transaction. A manifest
// with any invalid row produces a failure result and no side effects.
// Structural manifest faults and session faults are returned as errors.
func (s *ImportService) ImportManifest(
	ctx context.Context,
	sessionID uuid.UUID,
	manifestFilename string,
	raw []byte,
) (*ImportResult, error) {
	session, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report, err := manifest.Validate(session, manifestFilename, raw, s.opts)
	if err != nil {
		return nil, err
	}
	if report.ErrorCount() > 0 {
		metrics.ImportsFailed.Inc()
		return failureResult(report), nil
	}

	created, copiedRefs, commitErr := s.commit(ctx, session, report.Valid)
	if commitErr != nil {
		s.releaseBlobs(ctx, copiedRefs)
		metrics.ImportsFailed.Inc()
		return nil, ErrCommitFailed.WithDetails(commitErr.Error())
	}

	metrics.SpeechesImported.Add(float64(len(created)))
	s.publisher.Publish(&speech.ImportCompletedEvent{
		SessionID: sessionID,
		SpeechIDs: speechIDs(created),
	})

	return &ImportResult{
		SuccessCount: len(created),
		ErrorCount:   0,
		CreatedItems: created,
		Errors:       []ImportRowError{},
	}, nil
}

// commit persists every row inside one transaction. Blob copies happen
// alongside the database writes; the refs written so far are returned so
// the caller can release them when the transaction rolls back.
func (s *ImportService) commit(
	ctx context.Context,
	session *staging.Session,
	rows []manifest.Row,
) ([]CreatedItem, []string, error) {
	var (
		created    []CreatedItem
		copiedRefs []string
	)

	err := s.transactor.WithTx(ctx, func(txCtx context.Context) error {
		for _, row := range rows {
			file, ok := session.FindByOriginalName(row.AudioFilename)
			if !ok {
				// Validation guarantees resolution; a miss here means the
				// session changed under us.
				return staging.ErrFileNotFound.WithDetails(row.AudioFilename)
			}

			data, err := s.blobs.Get(txCtx, file.BlobRef)
			if err != nil {
				return err
			}

			permanentRef := permanentBlobRef(file.OriginalFilename)
			if _, err := s.blobs.Put(txCtx, permanentRef, data, file.ContentType); err != nil {
				return err
			}
			copiedRefs = append(copiedRefs, permanentRef)

			tags, err := s.tags.Resolve(txCtx, row.TagNames)
			if err != nil {
				return err
			}

			entity, err := s.speeches.Create(txCtx, speech.New(
				row.Text,
				row.Level,
				row.SpeechType,
				permanentRef,
				speech.WithTags(tags),
			))
			if err != nil {
				return err
			}

			tagIDs := make([]uint, len(tags))
			for i, t := range tags {
				tagIDs[i] = t.ID()
			}
			if err := s.speeches.LinkTags(txCtx, entity.ID(), tagIDs); err != nil {
				return err
			}

			created = append(created, CreatedItem{
				Row:  row.RowNumber,
				ID:   entity.ID(),
				Text: entity.Text(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, copiedRefs, err
	}
	return created, nil, nil
}

func (s *ImportService) releaseBlobs(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			composables.UseLogger(ctx).
				WithError(err).
				WithField("blobRef", ref).
				Warn("failed to delete orphaned blob after rollback")
		}
	}
}

func failureResult(report *manifest.Report) *ImportResult {
	errs := make([]ImportRowError, len(report.Errors))
	for i, rowErr := range report.Errors {
		errs[i] = ImportRowError{
			Row:   rowErr.Row,
			Error: strings.Join(rowErr.Reasons, "; "),
		}
	}
	return &ImportResult{
		SuccessCount: 0,
		ErrorCount:   len(errs),
		CreatedItems: []CreatedItem{},
		Errors:       errs,
	}
}

func permanentBlobRef(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return "speeches/" + uuid.New().String() + ext
}

func speechIDs(items []CreatedItem) []uint {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
