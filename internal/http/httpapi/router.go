package httpapi

import (
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"trainforge/internal/http/handlers"
	"trainforge/internal/infra"
	"trainforge/internal/middleware"
)

// NewRouter wires the API surface. countryLookup may be nil when no GeoIP
// database is configured.
func NewRouter(app *handlers.App, cfg *infra.Config, countryLookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Log),
		middleware.CORS(splitOrigins(cfg.CORSOrigins)),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		middleware.Locale(countryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/outputs", app.OutputsList)

	r.Route("/v1/creations", func(r chi.Router) {
		r.Post("/", app.CreationsCreate)
		r.Get("/", app.CreationsList)
		r.Post("/import", app.CreationsImport)
		r.Get("/{id}", app.CreationsGet)
		r.Post("/{id}/refine", app.CreationsRefine)
		r.Get("/{id}/export", app.CreationsExport)
		r.Get("/{id}/bundle", app.CreationsBundle)
	})

	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
