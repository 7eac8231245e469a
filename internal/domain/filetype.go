package domain

import "fmt"

// FileType is the closed set of upload categories the pipeline understands.
// It is assigned once at classification and determines which extractor runs
// and which output types apply.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypePDF      FileType = "pdf"
	FileTypeCSV      FileType = "csv"
	FileTypeExcel    FileType = "excel"
	FileTypeText     FileType = "text"
	FileTypeMarkdown FileType = "markdown"
	FileTypeVideo    FileType = "video"
)

// AllFileTypes lists every supported type in classification priority order.
var AllFileTypes = []FileType{
	FileTypeImage,
	FileTypePDF,
	FileTypeCSV,
	FileTypeExcel,
	FileTypeText,
	FileTypeMarkdown,
	FileTypeVideo,
}

// ParseFileType converts a stored string back into a FileType.
func ParseFileType(s string) (FileType, error) {
	ft := FileType(s)
	for _, known := range AllFileTypes {
		if ft == known {
			return ft, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, s)
}

func (t FileType) String() string { return string(t) }

// Valid reports whether t is one of the supported categories.
func (t FileType) Valid() bool {
	_, err := ParseFileType(string(t))
	return err == nil
}
