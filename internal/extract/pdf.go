package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"trainforge/internal/domain"
)

// extractPDF pulls page text for the first maxPDFPages pages and rasterizes
// each one for visual fidelity. Rendering is best-effort: when pdftoppm is
// not installed the pages keep their text and the raster slots stay empty.
func (e *Extractor) extractPDF(ctx context.Context, src domain.SourceFile) (domain.ExtractedContent, error) {
	reader, err := pdf.NewReader(bytes.NewReader(src.Data), src.Size())
	if err != nil {
		return domain.ExtractedContent{}, extractionErr(src, "open pdf: %v", err)
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return domain.ExtractedContent{}, extractionErr(src, "pdf has no pages")
	}
	limit := pageCount
	if limit > maxPDFPages {
		limit = maxPDFPages
	}

	pages := make([]domain.Page, 0, limit)
	var fullText strings.Builder
	for n := 1; n <= limit; n++ {
		page := reader.Page(n)
		var text string
		if !page.V.IsNull() {
			if plain, err := page.GetPlainText(nil); err == nil {
				text = collapseWhitespace(plain)
			}
		}
		pages = append(pages, domain.Page{Number: n, Text: text})
		if fullText.Len() > 0 {
			fullText.WriteString("\n\n")
		}
		fmt.Fprintf(&fullText, "[Page %d]\n%s", n, text)
	}

	e.renderPages(ctx, src, pages)

	return domain.ExtractedContent{
		Kind:  domain.KindPages,
		Pages: pages,
		Text:  fullText.String(),
	}, nil
}

// renderPages attaches a raster to each page in place. Pages are rendered in
// order, one pdftoppm invocation for the whole range.
func (e *Extractor) renderPages(ctx context.Context, src domain.SourceFile, pages []domain.Page) {
	if !e.tools.HasPDFRenderer() {
		e.log.Warn().Str("file", src.Name).Msg("extract: pdftoppm not found; pdf pages carry text only")
		return
	}

	tmpDir, err := os.MkdirTemp("", "trainforge_pdf_*")
	if err != nil {
		e.log.Warn().Err(err).Msg("extract: temp dir for pdf render")
		return
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(pdfPath, src.Data, 0o644); err != nil {
		e.log.Warn().Err(err).Msg("extract: stage pdf for render")
		return
	}

	paths, err := e.tools.RenderPDFPages(ctx, pdfPath, tmpDir, 1, len(pages), pdfRenderDPI)
	if err != nil {
		e.log.Warn().Err(err).Str("file", src.Name).Msg("extract: pdf render failed; continuing with text only")
		return
	}
	for i := range pages {
		if i >= len(paths) {
			break
		}
		data, err := os.ReadFile(paths[i])
		if err != nil || len(data) == 0 {
			continue
		}
		pages[i].Image = &domain.InlineImage{MIMEType: "image/png", Data: data}
	}
}

// collapseWhitespace joins text runs into single-spaced prose, following the
// normalization the rest of the pipeline expects.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
