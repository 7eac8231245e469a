// Package classify maps an uploaded file's declared media type and name onto
// the closed set of supported file types.
package classify

import (
	"fmt"
	"path/filepath"
	"strings"

	"trainforge/internal/domain"
)

// extensionsByType lists the recognized name extensions per category, in the
// same priority order the media-type checks use.
var extensionsByType = []struct {
	fileType domain.FileType
	exts     []string
}{
	{domain.FileTypeImage, []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp"}},
	{domain.FileTypePDF, []string{"pdf"}},
	{domain.FileTypeCSV, []string{"csv"}},
	{domain.FileTypeExcel, []string{"xlsx", "xls"}},
	{domain.FileTypeVideo, []string{"mp4", "webm", "mov", "avi", "mkv"}},
	{domain.FileTypeMarkdown, []string{"md", "markdown"}},
	{domain.FileTypeText, []string{"txt"}},
}

// Classify determines the logical file type of an upload. The declared media
// type wins whenever it matches a known category; the filename extension is
// consulted only when the media type is absent, empty, or too generic to
// carry a signal.
func Classify(name, declaredMIME string) (domain.FileType, error) {
	mt := normalizeMediaType(declaredMIME)
	if mt != "" && mt != "application/octet-stream" {
		// A specific but unrecognized media type is a rejection, not a
		// cue to guess from the name.
		if ft, ok := byMediaType(mt); ok {
			return ft, nil
		}
		return "", fmt.Errorf("%w: name=%q mime=%q", domain.ErrUnsupportedFileType, name, declaredMIME)
	}
	if ft, ok := byExtension(name); ok {
		return ft, nil
	}
	return "", fmt.Errorf("%w: name=%q mime=%q", domain.ErrUnsupportedFileType, name, declaredMIME)
}

func normalizeMediaType(declared string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func byMediaType(mt string) (domain.FileType, bool) {
	switch {
	case strings.HasPrefix(mt, "image/"):
		return domain.FileTypeImage, true
	case mt == "application/pdf":
		return domain.FileTypePDF, true
	case mt == "text/csv":
		return domain.FileTypeCSV, true
	case strings.Contains(mt, "spreadsheet") || strings.Contains(mt, "excel"):
		return domain.FileTypeExcel, true
	case strings.HasPrefix(mt, "video/"):
		return domain.FileTypeVideo, true
	case mt == "text/markdown":
		return domain.FileTypeMarkdown, true
	case strings.HasPrefix(mt, "text/"):
		return domain.FileTypeText, true
	}
	return "", false
}

func byExtension(name string) (domain.FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", false
	}
	for _, entry := range extensionsByType {
		for _, known := range entry.exts {
			if ext == known {
				return entry.fileType, true
			}
		}
	}
	return "", false
}

// SupportedFormats renders the accepted formats for user-facing rejection
// messages.
func SupportedFormats() string {
	var parts []string
	for _, entry := range extensionsByType {
		parts = append(parts, strings.Join(entry.exts, ", "))
	}
	return strings.Join(parts, ", ")
}
