package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"trainforge/internal/domain"
	"trainforge/internal/outputs"
)

type outputResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Inputs      []domain.FileType `json:"inputs"`
}

// OutputsList returns the output-type catalog, optionally filtered to the
// kinds applicable to one file type.
func (a *App) OutputsList(w http.ResponseWriter, r *http.Request) {
	var configs []outputs.Config
	if raw := strings.TrimSpace(r.URL.Query().Get("file_type")); raw != "" {
		ft, err := domain.ParseFileType(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown file type %q", raw))
			return
		}
		configs = outputs.ApplicableFor(ft)
	} else {
		configs = outputs.All()
	}

	resp := make([]outputResponse, 0, len(configs))
	for _, cfg := range configs {
		resp = append(resp, outputResponse{
			ID:          cfg.ID,
			Name:        cfg.Name,
			Description: cfg.Description,
			Inputs:      cfg.Inputs,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"outputs": resp})
}
