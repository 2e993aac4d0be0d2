package services

import "errors"

// Service errors
var (
	// Input errors
	ErrInvalidSampleCount = errors.New("invalid sample count")
	ErrUnsupportedExport  = errors.New("unsupported export format")
	ErrUnsupportedSample  = errors.New("unsupported sample format")

	// Dependency errors
	ErrPDFUnavailable    = errors.New("pdf rendering is not available")
	ErrSheetsUnavailable = errors.New("google sheets source is not available")
)
