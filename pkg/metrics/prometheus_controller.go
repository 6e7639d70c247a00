package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lingora/lingora/pkg/application"
)

// Pipeline counters exported by the ingestion services.
var (
	SpeechesImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingora_speeches_imported_total",
		Help: "Speeches created by successful manifest imports.",
	})
	ImportsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingora_imports_failed_total",
		Help: "Manifest imports rejected by validation or aborted during commit.",
	})
	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingora_staging_sessions_swept_total",
		Help: "Expired staging sessions removed by the sweeper.",
	})
)

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) application.Controller {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
