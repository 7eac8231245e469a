// Package promptgen assembles the multi-part model input for a generation
// call. Building is pure and deterministic for a given parsed file, output
// config, and extra instruction; segment order is fixed and segments for
// absent payloads are omitted entirely.
package promptgen

import (
	"fmt"
	"math"
	"strings"

	"trainforge/internal/domain"
	"trainforge/internal/extract"
	"trainforge/internal/outputs"
	"trainforge/internal/providers/genai"
)

const (
	// maxInlinePages bounds how many rendered page rasters ride along; text
	// for every extracted page is always included.
	maxInlinePages = 5

	// maxPromptRows bounds the tabular rows spelled out in the prompt.
	maxPromptRows = 50
)

// Prompt is the assembled model input: a system instruction plus ordered
// content parts with explicit provenance markers.
type Prompt struct {
	SystemInstruction string
	Parts             []genai.Part
}

const systemTemplate = `You are an expert instructional designer who produces interactive HTML training modules.

ARTIFACT BRIEF:
%s

HARD RULES:
1. The uploaded content is the sole source of truth. Never invent facts, names, figures, or steps that are not present in it.
2. Produce exactly one self-contained HTML document. All CSS and JavaScript must be inline; no external stylesheets, scripts, fonts, images, or network requests of any kind.
3. The module must end with a summary screen showing the final score and what was covered, and must include a visible "Print to PDF" control that calls window.print().
4. Respond with nothing but the raw HTML document, starting at <!DOCTYPE html>. No surrounding commentary and no markdown code fences.`

// Build assembles the prompt for the chosen output type. cfg must be one of
// the nine concrete registry entries.
func Build(pf *domain.ParsedFile, cfg outputs.Config, extraInstructions string) Prompt {
	p := Prompt{
		SystemInstruction: fmt.Sprintf(systemTemplate, strings.TrimSpace(cfg.Fragment)),
	}

	lead := "Build the training module from the uploaded content below. Use only this content."
	if extra := strings.TrimSpace(extraInstructions); extra != "" {
		lead += "\n\nAdditional instructions from the user:\n" + extra
	}
	p.Parts = append(p.Parts, genai.TextPart(lead))

	if pf.Content.Text != "" {
		p.Parts = append(p.Parts, genai.TextPart(primarySourceBlock(pf.Meta.FileName, pf.Content.Text)))
	}
	if len(pf.Content.Pages) > 0 {
		p.Parts = append(p.Parts, pageParts(pf.Content.Pages)...)
	}
	if pf.Content.Table != nil {
		p.Parts = append(p.Parts, genai.TextPart(dataTableBlock(pf.Content.Table)))
	}
	if len(pf.Content.Frames) > 0 {
		p.Parts = append(p.Parts, frameParts(pf.Content.Frames)...)
	}
	if pf.Content.Image != nil && pf.Type == domain.FileTypeImage {
		p.Parts = append(p.Parts,
			genai.TextPart(fmt.Sprintf("IMAGE FILE: %s\nThe attached image is the training material.", pf.Meta.FileName)),
			genai.ImagePart(pf.Content.Image.MIMEType, pf.Content.Image.Data),
		)
	}
	return p
}

func primarySourceBlock(fileName, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "===== PRIMARY SOURCE: %s =====\n", fileName)
	b.WriteString(text)
	fmt.Fprintf(&b, "\n===== END PRIMARY SOURCE: %s =====", fileName)
	return b.String()
}

func pageParts(pages []domain.Page) []genai.Part {
	parts := []genai.Part{genai.TextPart("PDF DOCUMENT PAGES:")}
	for i, page := range pages {
		var b strings.Builder
		fmt.Fprintf(&b, "--- PAGE %d ---\n%s", page.Number, page.Text)
		parts = append(parts, genai.TextPart(b.String()))
		if i < maxInlinePages && page.Image != nil {
			parts = append(parts, genai.ImagePart(page.Image.MIMEType, page.Image.Data))
		}
	}
	return parts
}

func dataTableBlock(table *domain.Table) string {
	var b strings.Builder
	b.WriteString("PRIMARY DATA TABLE\n")
	fmt.Fprintf(&b, "Headers: %s\n", strings.Join(table.Headers, ", "))
	fmt.Fprintf(&b, "Total Rows: %d\n", len(table.Rows))
	fmt.Fprintf(&b, "Total Columns: %d\n", len(table.Headers))
	limit := len(table.Rows)
	if limit > maxPromptRows {
		limit = maxPromptRows
	}
	for i := 0; i < limit; i++ {
		fmt.Fprintf(&b, "Row %d: %s\n", i+1, extract.RenderRow(table.Headers, table.Rows[i]))
	}
	if remaining := len(table.Rows) - limit; remaining > 0 {
		fmt.Fprintf(&b, "...%d more rows\n", remaining)
	}
	return strings.TrimRight(b.String(), "\n")
}

func frameParts(frames []domain.Frame) []genai.Part {
	parts := []genai.Part{genai.TextPart("VIDEO KEYFRAMES (in playback order):")}
	for _, frame := range frames {
		label := fmt.Sprintf("Frame at %d seconds:", int(math.Round(frame.TimestampSec)))
		parts = append(parts,
			genai.TextPart(label),
			genai.ImagePart(frame.Image.MIMEType, frame.Image.Data),
		)
	}
	return parts
}
