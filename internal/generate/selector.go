// Package generate drives the model-facing half of the pipeline: choosing an
// output type for a file, issuing the generation call, and applying
// refinements to an existing artifact.
package generate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"trainforge/internal/domain"
	"trainforge/internal/outputs"
	"trainforge/internal/providers/genai"
)

// ModelClient is the slice of the Gemini client the generate package needs.
// The concrete client is owned by the process entry point.
type ModelClient interface {
	GenerateContent(ctx context.Context, req genai.GenerateRequest) (*genai.GenerateResponse, error)
}

// selectTemperature keeps the classification near-deterministic.
const selectTemperature = 0.1

// previewTextLimit bounds how much extracted text rides into the
// classification prompt.
const previewTextLimit = 1500

// Selector asks the model which output type fits a file best, with a static
// per-file-type fallback when the answer is unusable.
type Selector struct {
	client ModelClient
	log    zerolog.Logger
}

// NewSelector constructs a Selector around the given client.
func NewSelector(client ModelClient, log zerolog.Logger) *Selector {
	return &Selector{client: client, log: log}
}

// Select returns a concrete output-type id for the file. It never fails and
// never returns the synthetic auto id: an invalid model answer or a failed
// call falls back to the static default for the file's type.
func (s *Selector) Select(ctx context.Context, pf *domain.ParsedFile) string {
	resp, err := s.client.GenerateContent(ctx, genai.GenerateRequest{
		Parts:       []genai.Part{genai.TextPart(classificationPrompt(pf))},
		Temperature: selectTemperature,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("file", pf.Meta.FileName).
			Msg("generate: auto-select call failed; using static fallback")
		return FallbackOutput(pf.Type)
	}
	id := normalizeAnswer(resp.Text)
	if !outputs.IsConcrete(id) {
		s.log.Debug().Str("answer", resp.Text).Str("file", pf.Meta.FileName).
			Msg("generate: auto-select answer not recognized; using static fallback")
		return FallbackOutput(pf.Type)
	}
	return id
}

// FallbackOutput is the static default-by-file-type mapping. It is
// exhaustive over the supported types so the pipeline always proceeds.
func FallbackOutput(ft domain.FileType) string {
	switch ft {
	case domain.FileTypeImage:
		return outputs.IDHotspot
	case domain.FileTypeVideo:
		return outputs.IDWalkthrough
	case domain.FileTypeCSV, domain.FileTypeExcel:
		return outputs.IDQuiz
	case domain.FileTypePDF, domain.FileTypeText, domain.FileTypeMarkdown:
		return outputs.IDFlashcards
	default:
		return outputs.IDFlashcards
	}
}

func classificationPrompt(pf *domain.ParsedFile) string {
	var b strings.Builder
	b.WriteString("Pick the single best training-output type for the uploaded content.\n\nOptions:\n")
	for _, cfg := range outputs.All() {
		fmt.Fprintf(&b, "- %s: %s\n", cfg.ID, cfg.Description)
	}
	b.WriteString("\nContent preview:\n")
	fmt.Fprintf(&b, "File type: %s\n", pf.Type)
	fmt.Fprintf(&b, "File name: %s\n", pf.Meta.FileName)
	if text := pf.Content.Text; text != "" {
		fmt.Fprintf(&b, "Text excerpt:\n%s\n", truncateAtRune(text, previewTextLimit))
	}
	if pf.Content.Table != nil {
		fmt.Fprintf(&b, "Tabular data: %d rows, %d columns\n",
			len(pf.Content.Table.Rows), len(pf.Content.Table.Headers))
	}
	if n := len(pf.Content.Pages); n > 0 {
		fmt.Fprintf(&b, "Document pages: %d\n", n)
	}
	if n := len(pf.Content.Frames); n > 0 {
		fmt.Fprintf(&b, "Video frames sampled: %d\n", n)
	}
	b.WriteString("\nAnswer with exactly one identifier from the options list and nothing else.")
	return b.String()
}

// truncateAtRune cuts text to at most limit bytes without splitting a
// multibyte rune at the boundary.
func truncateAtRune(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func normalizeAnswer(raw string) string {
	answer := strings.ToLower(strings.TrimSpace(raw))
	answer = strings.Trim(answer, "\"'`")
	return strings.TrimSpace(answer)
}
