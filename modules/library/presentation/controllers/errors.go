package controllers

import (
	"errors"
	"net/http"

	"github.com/lingora/lingora/modules/library/domain/manifest"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence"
	"github.com/lingora/lingora/pkg/httpapi"
	"github.com/lingora/lingora/pkg/serrors"
)

var statusByCode = map[string]int{
	"STAGING_SESSION_NOT_FOUND": http.StatusNotFound,
	"STAGING_SESSION_EXPIRED":   http.StatusGone,
	"STAGING_FILE_NOT_FOUND":    http.StatusNotFound,
	"BLOB_NOT_FOUND":            http.StatusNotFound,
	"INVALID_EXTENSION":         http.StatusBadRequest,
	"INVALID_FILENAME":          http.StatusBadRequest,
	"FILE_TOO_LARGE":            http.StatusRequestEntityTooLarge,
	"EMPTY_FILE":                http.StatusBadRequest,
	"IMPORT_COMMIT_FAILED":      http.StatusInternalServerError,
}

// writeServiceError maps coded service errors to API responses, hiding
// everything else behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error, meta map[string]string) {
	var base *serrors.Base
	if errors.As(err, &base) {
		status, ok := statusByCode[base.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		_ = httpapi.WriteError(w, status, base.Code, base.Message, meta)
		return
	}

	var structural *manifest.StructuralError
	if errors.As(err, &structural) {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MANIFEST_MALFORMED", structural.Error(), meta)
		return
	}

	if errors.Is(err, persistence.ErrSpeechNotFound) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "SPEECH_NOT_FOUND", err.Error(), meta)
		return
	}
	if errors.Is(err, persistence.ErrTagNotFound) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "TAG_NOT_FOUND", err.Error(), meta)
		return
	}

	_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", meta)
}
