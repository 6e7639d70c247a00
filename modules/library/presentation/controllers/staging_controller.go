package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/presentation/controllers/dtos"
	"github.com/lingora/lingora/modules/library/services"
	"github.com/lingora/lingora/pkg/application"
	"github.com/lingora/lingora/pkg/composables"
	"github.com/lingora/lingora/pkg/httpapi"
)

// StagingController is the upload phase of the ingestion API: create a
// session, stage audio files into it, inspect or discard it.
type StagingController struct {
	stagingService  *services.StagingService
	basePath        string
	maxUploadMemory int64
}

func NewStagingController(app application.Application, maxUploadMemory int64) application.Controller {
	return &StagingController{
		stagingService:  app.Service(services.StagingService{}).(*services.StagingService),
		basePath:        "/library/staging",
		maxUploadMemory: maxUploadMemory,
	}
}

func (c *StagingController) Key() string {
	return c.basePath
}

func (c *StagingController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/sessions", c.CreateSession).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", c.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}", c.PurgeSession).Methods(http.MethodDelete)
	router.HandleFunc("/sessions/{id}/files", c.UploadFiles).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/files/{key}", c.DownloadFile).Methods(http.MethodGet)
}

// CreateSession opens a staging session, optionally staging files sent in
// the same multipart request under the "files" field.
func (c *StagingController) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := c.stagingService.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}

	uploaded, err := c.stageRequestFiles(r, session.ID)
	if err != nil {
		// The session survives a partial upload; the client can retry the
		// failed files against it.
		writeServiceError(w, err, map[string]string{"uploadSessionId": session.ID.String()})
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusCreated, &dtos.UploadResponse{
		UploadSessionID: session.ID.String(),
		UploadedFiles:   uploaded,
	})
}

// UploadFiles stages additional files into an existing session.
func (c *StagingController) UploadFiles(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDVar(w, r)
	if !ok {
		return
	}

	uploaded, err := c.stageRequestFiles(r, sessionID)
	if err != nil {
		writeServiceError(w, err, map[string]string{"uploadSessionId": sessionID.String()})
		return
	}
	if len(uploaded) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "NO_FILES", "no files in request", nil)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusCreated, &dtos.UploadResponse{
		UploadSessionID: sessionID.String(),
		UploadedFiles:   uploaded,
	})
}

func (c *StagingController) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDVar(w, r)
	if !ok {
		return
	}

	session, err := c.stagingService.GetSession(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToSessionResponse(session))
}

func (c *StagingController) DownloadFile(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDVar(w, r)
	if !ok {
		return
	}

	file, data, err := c.stagingService.GetFile(r.Context(), sessionID, mux.Vars(r)["key"])
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to stream staged audio")
	}
}

func (c *StagingController) PurgeSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDVar(w, r)
	if !ok {
		return
	}

	if err := c.stagingService.Purge(r.Context(), sessionID); err != nil {
		writeServiceError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stageRequestFiles registers every multipart file sent under "files".
// A request with no multipart body yields an empty slice, not an error.
func (c *StagingController) stageRequestFiles(r *http.Request, sessionID uuid.UUID) ([]dtos.UploadedFile, error) {
	if err := r.ParseMultipartForm(c.maxUploadMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, io.EOF) {
			return []dtos.UploadedFile{}, nil
		}
		return nil, err
	}

	headers := r.MultipartForm.File["files"]
	uploaded := make([]dtos.UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := c.stageOne(r, sessionID, header)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, dtos.ToUploadedFile(file))
	}
	return uploaded, nil
}

func (c *StagingController) stageOne(r *http.Request, sessionID uuid.UUID, header *multipart.FileHeader) (*staging.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return c.stagingService.RegisterFile(
		r.Context(),
		sessionID,
		header.Filename,
		data,
		header.Header.Get("Content-Type"),
	)
}

func sessionIDVar(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_SESSION_ID", "session id is not a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
