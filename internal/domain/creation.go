package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Creation is a persisted generation result. Refinement replaces HTML and
// Timestamp in place under the same ID; everything else is fixed at first
// generation.
type Creation struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	HTML           string   `json:"html"`
	OriginalImage  string   `json:"original_image,omitempty"` // data URL preview of the source
	OutputType     string   `json:"output_type"`
	SourceFileType FileType `json:"source_file_type"`
	Meta           Metadata `json:"metadata"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewCreation mints a Creation with a fresh id and current timestamp.
func NewCreation(name, html, originalImage, outputType string, sourceType FileType, meta Metadata) Creation {
	return Creation{
		ID:             uuid.NewString(),
		Name:           name,
		HTML:           html,
		OriginalImage:  originalImage,
		OutputType:     outputType,
		SourceFileType: sourceType,
		Meta:           meta,
		Timestamp:      time.Now().UTC(),
	}
}

// ExportJSON serializes the creation to its flat interchange document. The
// timestamp is rendered as an ISO-8601 string by the time.Time marshaler.
func (c Creation) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ImportCreation parses an exported document back into a Creation. ID and
// timestamp are regenerated when absent so a trimmed export still imports;
// html, name, output type, and source file type must survive unchanged.
func ImportCreation(data []byte) (Creation, error) {
	var c Creation
	if err := json.Unmarshal(data, &c); err != nil {
		return Creation{}, err
	}
	if strings.TrimSpace(c.HTML) == "" {
		return Creation{}, errors.New("creation import: html is required")
	}
	if c.SourceFileType != "" && !c.SourceFileType.Valid() {
		return Creation{}, errors.New("creation import: unknown source file type")
	}
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = "Imported creation"
	}
	return c, nil
}
