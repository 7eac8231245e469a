package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trainforge/internal/classify"
	"trainforge/internal/domain"
	"trainforge/internal/generate"
	"trainforge/internal/middleware"
	"trainforge/internal/outputs"
	"trainforge/pkg/zip"
)

// maxUploadBytes bounds an upload; videos are the largest expected input.
const maxUploadBytes = 200 << 20

// creationSummary is the list representation: everything but the artifact
// markup, which can run to hundreds of kilobytes per entry.
type creationSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OutputType     string          `json:"output_type"`
	SourceFileType domain.FileType `json:"source_file_type"`
	Meta           domain.Metadata `json:"metadata"`
	Timestamp      time.Time       `json:"timestamp"`
}

func summarize(c domain.Creation) creationSummary {
	return creationSummary{
		ID:             c.ID,
		Name:           c.Name,
		OutputType:     c.OutputType,
		SourceFileType: c.SourceFileType,
		Meta:           c.Meta,
		Timestamp:      c.Timestamp,
	}
}

// CreationsCreate runs the full pipeline: classify, extract, pick an output
// type, generate, persist. One pipeline at a time; a concurrent upload gets
// 409 instead of queueing.
func (a *App) CreationsCreate(w http.ResponseWriter, r *http.Request) {
	if err := a.Session.Begin(generate.StateExtracting); err != nil {
		a.error(w, http.StatusConflict, "busy", "another generation is already in progress")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		a.Session.Fail()
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.Session.Fail()
		a.error(w, http.StatusBadRequest, "bad_request", "file is required")
		return
	}
	defer file.Close()

	fileType, err := classify.Classify(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		a.Session.Fail()
		a.error(w, http.StatusBadRequest, "unsupported_file_type",
			unsupportedFormatMessage(middleware.LocaleFromContext(r.Context())))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.Session.Fail()
		a.error(w, http.StatusBadRequest, "bad_request", "could not read uploaded file")
		return
	}

	src := domain.SourceFile{Name: header.Filename, MIME: header.Header.Get("Content-Type"), Data: data}
	pf, err := a.Extractor.Extract(r.Context(), src, fileType)
	if err != nil {
		a.Session.Fail()
		if errors.Is(err, domain.ErrVideoLoadTimeout) {
			a.error(w, http.StatusUnprocessableEntity, "extraction_failed", "video metadata could not be read in time")
			return
		}
		a.Log.Warn().Err(err).Str("file", header.Filename).Msg("handlers: extraction failed")
		a.error(w, http.StatusUnprocessableEntity, "extraction_failed", "could not extract content from the file")
		return
	}

	outputID := strings.TrimSpace(r.FormValue("output_type"))
	_ = a.Session.Advance(generate.StateAwaitingOutputChoice)
	if outputID == "" || outputID == outputs.AutoID {
		_ = a.Session.Advance(generate.StateAutoSelecting)
		outputID = a.Selector.Select(r.Context(), pf)
	} else if !outputs.IsConcrete(outputID) {
		a.Session.Fail()
		a.error(w, http.StatusBadRequest, "unknown_output_type", fmt.Sprintf("unknown output type %q", outputID))
		return
	}
	_ = a.Session.Advance(generate.StateGenerating)

	html, err := a.Orchestrator.Generate(r.Context(), pf, outputID, r.FormValue("instructions"))
	if err != nil {
		a.Session.Fail()
		a.Log.Error().Err(err).Str("output_type", outputID).Msg("handlers: generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed", "artifact generation failed")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	creation := domain.NewCreation(name, html, previewDataURL(pf), outputID, fileType, pf.Meta)
	if err := a.Store.Append(r.Context(), creation); err != nil {
		a.Session.Fail()
		a.Log.Error().Err(err).Msg("handlers: persist creation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist creation")
		return
	}
	_ = a.Session.Advance(generate.StateReady)

	a.json(w, http.StatusCreated, creation)
}

// previewDataURL renders an image upload as a data URL so the client can
// show the source alongside the artifact. Non-image uploads have no preview.
func previewDataURL(pf *domain.ParsedFile) string {
	if pf.Type != domain.FileTypeImage || pf.Content.Image == nil {
		return ""
	}
	img := pf.Content.Image
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

type refineRequest struct {
	Instruction          string `json:"instruction"`
	ReferenceImageBase64 string `json:"reference_image_base64,omitempty"`
	ReferenceImageMIME   string `json:"reference_image_mime,omitempty"`
}

// CreationsRefine applies a natural-language change to a stored creation.
// The stored artifact is only replaced after the model call succeeds.
func (a *App) CreationsRefine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creation, err := a.Store.Get(r.Context(), id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "creation not found")
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "instruction is required")
		return
	}

	var ref *domain.InlineImage
	if req.ReferenceImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ReferenceImageBase64)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "reference_image_base64 is not valid base64")
			return
		}
		mime := req.ReferenceImageMIME
		if mime == "" {
			mime = http.DetectContentType(data)
		}
		ref = &domain.InlineImage{MIMEType: mime, Data: data}
	}

	if err := a.Session.Begin(generate.StateRefining); err != nil {
		a.error(w, http.StatusConflict, "busy", "another generation is already in progress")
		return
	}

	html, err := a.Orchestrator.Refine(r.Context(), creation.HTML, req.Instruction, ref)
	if err != nil {
		a.Session.Fail()
		a.Log.Error().Err(err).Str("creation_id", id).Msg("handlers: refinement failed")
		a.error(w, http.StatusBadGateway, "refinement_failed", "artifact refinement failed")
		return
	}

	ts := time.Now().UTC()
	if err := a.Store.Update(r.Context(), id, html, ts); err != nil {
		a.Session.Fail()
		a.Log.Error().Err(err).Str("creation_id", id).Msg("handlers: persist refinement failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist refinement")
		return
	}
	_ = a.Session.Advance(generate.StateReady)

	creation.HTML = html
	creation.Timestamp = ts
	a.json(w, http.StatusOK, creation)
}

// CreationsList returns history summaries, most recent first.
func (a *App) CreationsList(w http.ResponseWriter, r *http.Request) {
	creations, err := a.Store.List(r.Context())
	if err != nil {
		a.Log.Error().Err(err).Msg("handlers: list creations failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	summaries := make([]creationSummary, 0, len(creations))
	for _, c := range creations {
		summaries = append(summaries, summarize(c))
	}
	a.json(w, http.StatusOK, map[string]any{"creations": summaries, "limit": a.Store.Limit()})
}

// CreationsGet returns one creation in full, artifact markup included.
func (a *App) CreationsGet(w http.ResponseWriter, r *http.Request) {
	creation, err := a.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "creation not found")
		return
	}
	a.json(w, http.StatusOK, creation)
}

// CreationsExport downloads the creation as its JSON interchange document.
func (a *App) CreationsExport(w http.ResponseWriter, r *http.Request) {
	creation, err := a.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "creation not found")
		return
	}
	doc, err := creation.ExportJSON()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to serialize creation")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(creation.Name)+".json"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// CreationsImport restores a previously exported creation into history.
func (a *App) CreationsImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read payload")
		return
	}
	creation, err := domain.ImportCreation(body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := a.Store.Append(r.Context(), creation); err != nil {
		a.Log.Error().Err(err).Msg("handlers: import creation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist creation")
		return
	}
	a.json(w, http.StatusCreated, creation)
}

// CreationsBundle downloads a zip holding the standalone artifact plus its
// interchange document.
func (a *App) CreationsBundle(w http.ResponseWriter, r *http.Request) {
	creation, err := a.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "creation not found")
		return
	}
	doc, err := creation.ExportJSON()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to serialize creation")
		return
	}
	archive := zip.ArchiveAssets([]zip.Asset{
		{Filename: "artifact.html", MIME: "text/html", Data: []byte(creation.HTML)},
		{Filename: "creation.json", MIME: "application/json", Data: doc},
	})
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build bundle")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(creation.Name)+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// exportFileName flattens a creation name into something safe for a
// Content-Disposition filename.
func exportFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "creation"
	}
	return b.String()
}
