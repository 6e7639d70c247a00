package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lingora/lingora/modules/library/presentation/controllers/dtos"
	"github.com/lingora/lingora/modules/library/services"
	"github.com/lingora/lingora/pkg/application"
	"github.com/lingora/lingora/pkg/httpapi"
)

// LibraryController exposes read access to the imported library: tags and
// individual speeches.
type LibraryController struct {
	speechService *services.SpeechService
	tagService    *services.TagService
	basePath      string
}

func NewLibraryController(app application.Application) application.Controller {
	return &LibraryController{
		speechService: app.Service(services.SpeechService{}).(*services.SpeechService),
		tagService:    app.Service(services.TagService{}).(*services.TagService),
		basePath:      "/library",
	}
}

func (c *LibraryController) Key() string {
	return c.basePath
}

func (c *LibraryController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/tags", c.ListTags).Methods(http.MethodGet)
	router.HandleFunc("/speeches/{id:[0-9]+}", c.GetSpeech).Methods(http.MethodGet)
}

func (c *LibraryController) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := c.tagService.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}

	result := make([]dtos.TagResponse, len(tags))
	for i, t := range tags {
		result[i] = dtos.ToTagResponse(t)
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, result)
}

func (c *LibraryController) GetSpeech(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_SPEECH_ID", "speech id must be numeric", nil)
		return
	}

	entity, err := c.speechService.GetByID(r.Context(), uint(id))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ToSpeechResponse(entity))
}
