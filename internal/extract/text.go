package extract

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"trainforge/internal/domain"
)

// extractText reads text and markdown files verbatim.
func (e *Extractor) extractText(src domain.SourceFile) (domain.ExtractedContent, error) {
	if !utf8.Valid(src.Data) {
		return domain.ExtractedContent{}, extractionErr(src, "file is not valid UTF-8 text")
	}
	text := strings.TrimRight(string(src.Data), "\n")
	if strings.TrimSpace(text) == "" {
		return domain.ExtractedContent{}, extractionErr(src, "file contains no text")
	}
	return domain.ExtractedContent{Kind: domain.KindText, Text: text}, nil
}

// extractImage carries the full image bytes through untouched; downscaling
// would cost the model visual detail it may need.
func (e *Extractor) extractImage(src domain.SourceFile) (domain.ExtractedContent, error) {
	mime := strings.TrimSpace(src.MIME)
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(src.Data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return domain.ExtractedContent{}, extractionErr(src, "declared image has non-image content type %q", mime)
	}
	return domain.ExtractedContent{
		Kind:  domain.KindImage,
		Image: &domain.InlineImage{MIMEType: mime, Data: src.Data},
	}, nil
}
