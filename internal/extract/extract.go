// Package extract turns raw uploaded files into the normalized content
// representation the prompt builder consumes. One adapter per supported file
// type; the dispatch is a closed switch so a new file type cannot be added
// without a matching adapter.
package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"trainforge/internal/domain"
	"trainforge/internal/media"
)

const (
	// maxPDFPages is a hard token-budget guard, not a tunable.
	maxPDFPages = 20

	// pdfRenderDPI rasterizes at 2.0x of the 72dpi PDF point grid.
	pdfRenderDPI = 144

	videoProbeTimeout = 30 // seconds
	maxFrameWidth     = 1280
	maxFrameHeight    = 720
)

// Extractor owns the per-type adapters. It is safe for sequential reuse; the
// pipeline never runs two extractions concurrently.
type Extractor struct {
	tools *media.Tools
	log   zerolog.Logger
}

// New constructs an Extractor around the given media tooling.
func New(tools *media.Tools, log zerolog.Logger) *Extractor {
	if tools == nil {
		tools = media.New()
	}
	return &Extractor{tools: tools, log: log}
}

// Extract runs the adapter for the classified type and assembles the
// immutable ParsedFile. Malformed input surfaces as ErrExtractionFailed;
// a video whose metadata cannot be read in time surfaces as
// ErrVideoLoadTimeout.
func (e *Extractor) Extract(ctx context.Context, src domain.SourceFile, typ domain.FileType) (*domain.ParsedFile, error) {
	if len(src.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file %q", domain.ErrExtractionFailed, src.Name)
	}

	var (
		content domain.ExtractedContent
		err     error
	)
	switch typ {
	case domain.FileTypeImage:
		content, err = e.extractImage(src)
	case domain.FileTypePDF:
		content, err = e.extractPDF(ctx, src)
	case domain.FileTypeCSV:
		content, err = e.extractCSV(src)
	case domain.FileTypeExcel:
		content, err = e.extractExcel(src)
	case domain.FileTypeText, domain.FileTypeMarkdown:
		content, err = e.extractText(src)
	case domain.FileTypeVideo:
		content, err = e.extractVideo(ctx, src)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, typ)
	}
	if err != nil {
		return nil, err
	}
	return domain.NewParsedFile(src, typ, content)
}

func extractionErr(src domain.SourceFile, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s (%s)", domain.ErrExtractionFailed, detail, src.Name)
}
