package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"trainforge/internal/domain"
	"trainforge/internal/outputs"
	"trainforge/internal/promptgen"
	"trainforge/internal/providers/genai"
)

const (
	// generateTemperature allows some creative range for the artifact.
	generateTemperature = 0.7

	// refineTemperature favors conservative edits to an existing artifact.
	refineTemperature = 0.3
)

// emptyArtifact is the cleaned result of a model response carrying no text.
const emptyArtifact = "<!-- empty response -->"

// Orchestrator issues generation and refinement calls. One model call per
// operation, no retries; failures surface with their cause and leave the
// caller's prior artifact untouched.
type Orchestrator struct {
	client ModelClient
	log    zerolog.Logger
}

// NewOrchestrator constructs an Orchestrator around the given client.
func NewOrchestrator(client ModelClient, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{client: client, log: log}
}

// Generate builds the prompt for the chosen output type and asks the model
// for a fresh artifact.
func (o *Orchestrator) Generate(ctx context.Context, pf *domain.ParsedFile, outputID, extraInstructions string) (string, error) {
	cfg, ok := outputs.ByID(outputID)
	if !ok || !outputs.IsConcrete(outputID) {
		return "", fmt.Errorf("%w: unknown output type %q", domain.ErrGenerationFailed, outputID)
	}

	prompt := promptgen.Build(pf, cfg, extraInstructions)
	resp, err := o.client.GenerateContent(ctx, genai.GenerateRequest{
		SystemInstruction: prompt.SystemInstruction,
		Parts:             prompt.Parts,
		Temperature:       generateTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	o.log.Info().
		Str("file", pf.Meta.FileName).
		Str("output_type", outputID).
		Msg("generate: artifact generated")
	return CleanArtifact(resp.Text), nil
}

const refineSystemInstruction = `You are updating an existing self-contained interactive HTML training module.
Apply the requested change and nothing else. Preserve all existing interactive and
gamification elements (scoring, progress, feedback, summary screen, print control)
unless the request explicitly asks to remove them. The result must remain a single
self-contained HTML document with no external resources. Respond with nothing but the
raw updated HTML document, starting at <!DOCTYPE html>, with no commentary and no
markdown code fences.`

// Refine applies a natural-language change to an existing artifact. The
// current markup is embedded verbatim; on failure the caller keeps its prior
// artifact because nothing is returned.
func (o *Orchestrator) Refine(ctx context.Context, currentHTML, instruction string, referenceImage *domain.InlineImage) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("%w: instruction is empty", domain.ErrRefinementFailed)
	}

	parts := []genai.Part{
		genai.TextPart("CURRENT ARTIFACT (HTML):\n" + currentHTML),
		genai.TextPart("REQUESTED CHANGE:\n" + instruction),
	}
	if referenceImage != nil {
		parts = append(parts,
			genai.TextPart("Reference image for the requested change:"),
			genai.ImagePart(referenceImage.MIMEType, referenceImage.Data),
		)
	}

	resp, err := o.client.GenerateContent(ctx, genai.GenerateRequest{
		SystemInstruction: refineSystemInstruction,
		Parts:             parts,
		Temperature:       refineTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRefinementFailed, err)
	}

	o.log.Info().Int("instruction_len", len(instruction)).Msg("generate: artifact refined")
	return CleanArtifact(resp.Text), nil
}

// CleanArtifact strips a single leading code fence of the form "```html" or
// "```" (case-insensitive) and a single trailing "```", then trims
// whitespace. It is idempotent and leaves fence-less markup unchanged; an
// empty response cleans to an HTML comment placeholder.
func CleanArtifact(raw string) string {
	text := strings.TrimSpace(raw)
	if lower := strings.ToLower(text); strings.HasPrefix(lower, "```html") {
		text = strings.TrimSpace(text[len("```html"):])
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimSpace(text[len("```"):])
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(text[:len(text)-len("```")])
	}
	if text == "" {
		return emptyArtifact
	}
	return text
}
