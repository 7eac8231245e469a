package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"trainforge/internal/extract"
	"trainforge/internal/generate"
	"trainforge/internal/history"
)

// App carries the handler dependencies. One App per process; the session
// guard inside makes the generation pipeline single-flight.
type App struct {
	Log          zerolog.Logger
	Store        *history.Store
	Extractor    *extract.Extractor
	Selector     *generate.Selector
	Orchestrator *generate.Orchestrator
	Session      *generate.Session
}

func NewApp(log zerolog.Logger, store *history.Store, ex *extract.Extractor, sel *generate.Selector, orch *generate.Orchestrator) *App {
	return &App{
		Log:          log,
		Store:        store,
		Extractor:    ex,
		Selector:     sel,
		Orchestrator: orch,
		Session:      generate.NewSession(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
