// Package api exposes a session over HTTP as JSON.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vampirenirmal/lumina/internal/session"
)

const (
	apiBasePath = "/api"
	paramID     = "id"
	paramRevID  = "revisionID"
	paramFormat = "format"
)

// DefaultRequestTimeout bounds a request including any AI round trip.
const DefaultRequestTimeout = 90 * time.Second

// NewRouter builds the HTTP handler for sess. A timeout of zero or less
// uses DefaultRequestTimeout.
func NewRouter(sess *session.Session, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	h := &handler{sess: sess}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	r.Use(middleware.Timeout(timeout))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Route("/book", func(r chi.Router) {
			r.Get("/", makeHandler(h.getBook))
			r.Patch("/metadata", makeHandler(h.patchMetadata))
			r.Get("/stats", makeHandler(h.getStats))
			r.Post("/outline", makeHandler(h.postOutline))
			r.Get("/save-status", makeHandler(h.getSaveStatus))
		})

		r.Route("/chapters", func(r chi.Router) {
			r.Post("/", makeHandler(h.postChapter))
			r.Get("/active", makeHandler(h.getActiveChapter))
			r.Route("/{"+paramID+"}", func(r chi.Router) {
				r.Patch("/", makeHandler(h.patchChapter))
				r.Post("/select", makeHandler(h.selectChapter))
				r.Get("/revisions", makeHandler(h.getRevisions))
				r.Post("/revisions", makeHandler(h.postRevision))
				r.Post("/revisions/{"+paramRevID+"}/restore", makeHandler(h.restoreRevision))
				r.Post("/refine", makeHandler(h.postRefine))
				r.Get("/muse", makeHandler(h.getMuse))
			})
		})

		r.Route("/preview", func(r chi.Router) {
			r.Get("/", makeHandler(h.getPreview))
			r.Post("/next", makeHandler(h.nextSpread))
			r.Post("/prev", makeHandler(h.prevSpread))
			r.Put("/zoom", makeHandler(h.putZoom))
		})

		r.Route("/design", func(r chi.Router) {
			r.Post("/layout", makeHandler(h.suggestLayout))
			r.Post("/cover", makeHandler(h.suggestCover))
			r.Post("/cover/image", makeHandler(h.generateCover))
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/", makeHandler(h.getFormats))
			r.Get("/{"+paramFormat+"}", makeHandler(h.getExport))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", makeHandler(h.getProfile))
			r.Post("/", makeHandler(h.signIn))
			r.Delete("/", makeHandler(h.signOut))
		})
	})

	r.Get("/healthz", handleHealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerContentType, contentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
