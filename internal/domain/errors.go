package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrVideoLoadTimeout    = errors.New("video metadata load timed out")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrRefinementFailed    = errors.New("refinement failed")
	ErrBusy                = errors.New("another pipeline is already in flight")
)
