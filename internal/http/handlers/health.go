package handlers

import (
	"net/http"
)

// Health reports liveness only. It deliberately does not touch the history
// database or the model client, so probes stay cheap and a Gemini outage
// does not take the pod out of rotation.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
