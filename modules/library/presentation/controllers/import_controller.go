package controllers

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lingora/lingora/modules/library/services"
	"github.com/lingora/lingora/pkg/application"
	"github.com/lingora/lingora/pkg/constants"
	"github.com/lingora/lingora/pkg/httpapi"
)

// ImportController is the manifest phase of the ingestion API: submit a
// CSV or XLSX manifest against a staged session and receive the import
// outcome. The outcome is all-or-nothing; a manifest with any invalid row
// commits nothing.
type ImportController struct {
	importService   *services.ImportService
	basePath        string
	maxUploadMemory int64
}

func NewImportController(app application.Application, maxUploadMemory int64) application.Controller {
	return &ImportController{
		importService:   app.Service(services.ImportService{}).(*services.ImportService),
		basePath:        "/library/imports",
		maxUploadMemory: maxUploadMemory,
	}
}

func (c *ImportController) Key() string {
	return c.basePath
}

func (c *ImportController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
}

type importRequest struct {
	SessionID string `validate:"required,uuid4"`
}

func (c *ImportController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(c.maxUploadMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "expected a multipart form", nil)
		return
	}

	req := importRequest{SessionID: r.FormValue("sessionId")}
	if err := constants.Validate.Struct(req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_SESSION_ID", "sessionId is not a valid UUID", nil)
		return
	}
	sessionID := uuid.MustParse(req.SessionID)

	file, header, err := r.FormFile("manifest")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "NO_MANIFEST", "manifest file is required", nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	raw, err := io.ReadAll(file)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to read manifest", nil)
		return
	}

	result, err := c.importService.ImportManifest(r.Context(), sessionID, header.Filename, raw)
	if err != nil {
		writeServiceError(w, err, map[string]string{"uploadSessionId": sessionID.String()})
		return
	}

	status := http.StatusOK
	if !result.Success() {
		status = http.StatusUnprocessableEntity
	}
	_ = httpapi.WriteJSON(w, status, result)
}
