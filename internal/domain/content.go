package domain

import (
	"fmt"
	"strings"
)

// ContentKind discriminates the payload shape held by ExtractedContent.
// Exactly one shape is populated for a given file; the Kind makes the
// dispatch explicit instead of probing which optional field happens to be
// set.
type ContentKind string

const (
	KindText   ContentKind = "text"
	KindPages  ContentKind = "pages"
	KindData   ContentKind = "data"
	KindFrames ContentKind = "frames"
	KindImage  ContentKind = "image"
)

// InlineImage is binary image data together with its media type so the
// transport layer can attach it to a multimodal model request.
type InlineImage struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Page is one extracted PDF page. Image is nil when no renderer was
// available; the page text is still usable on its own.
type Page struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
	Image  *InlineImage `json:"image,omitempty"`
}

// Row maps column headers to cell values. Values are either string or
// float64 depending on whether the raw cell parsed fully as a number.
type Row map[string]any

// Table holds tabular content with header order preserved.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Frame is a single still captured from a video.
type Frame struct {
	TimestampSec float64     `json:"timestamp_sec"`
	Image        InlineImage `json:"image"`
}

// ExtractedContent is the normalized payload produced by an extractor.
// Kind names the primary payload; Text may additionally carry a
// human-readable flattening of pages/data/frames for prompting.
type ExtractedContent struct {
	Kind   ContentKind
	Text   string
	Pages  []Page
	Table  *Table
	Frames []Frame
	Image  *InlineImage

	// DurationSec is the source duration for video content.
	DurationSec float64
}

// Validate checks that the populated payload matches the declared Kind.
func (c *ExtractedContent) Validate() error {
	switch c.Kind {
	case KindText:
		if c.Text == "" {
			return fmt.Errorf("text content is empty")
		}
	case KindPages:
		if len(c.Pages) == 0 {
			return fmt.Errorf("pages content has no pages")
		}
	case KindData:
		if c.Table == nil {
			return fmt.Errorf("data content has no table")
		}
	case KindFrames:
		if len(c.Frames) == 0 {
			return fmt.Errorf("frames content has no frames")
		}
	case KindImage:
		if c.Image == nil || len(c.Image.Data) == 0 {
			return fmt.Errorf("image content has no bytes")
		}
	default:
		return fmt.Errorf("unknown content kind %q", c.Kind)
	}
	return nil
}

// Metadata is the derived summary computed once from ExtractedContent.
type Metadata struct {
	FileName    string  `json:"file_name"`
	FileSize    int64   `json:"file_size"`
	PageCount   int     `json:"page_count,omitempty"`
	RowCount    int     `json:"row_count,omitempty"`
	ColumnCount int     `json:"column_count,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
	FrameCount  int     `json:"frame_count,omitempty"`
}

// SourceFile is the caller-owned handle to the uploaded bytes. The pipeline
// reads it and never mutates it.
type SourceFile struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the byte length of the source.
func (s SourceFile) Size() int64 { return int64(len(s.Data)) }

// ParsedFile is the canonical pipeline output: one source file classified,
// extracted, and summarized. Constructed in one pass and immutable after;
// a new upload produces a fresh ParsedFile rather than mutating this one.
type ParsedFile struct {
	Source  SourceFile
	Type    FileType
	MIME    string
	Content ExtractedContent
	Meta    Metadata
}

// NewParsedFile assembles a ParsedFile and derives its metadata from the
// extracted content.
func NewParsedFile(src SourceFile, typ FileType, content ExtractedContent) (*ParsedFile, error) {
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	meta := Metadata{
		FileName: src.Name,
		FileSize: src.Size(),
	}
	switch content.Kind {
	case KindPages:
		meta.PageCount = len(content.Pages)
	case KindData:
		meta.RowCount = len(content.Table.Rows)
		meta.ColumnCount = len(content.Table.Headers)
	case KindFrames:
		meta.FrameCount = len(content.Frames)
	}
	if content.DurationSec > 0 {
		meta.DurationSec = content.DurationSec
	}
	return &ParsedFile{
		Source:  src,
		Type:    typ,
		MIME:    strings.TrimSpace(src.MIME),
		Content: content,
		Meta:    meta,
	}, nil
}
