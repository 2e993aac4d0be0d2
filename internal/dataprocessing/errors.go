package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a reader
	ErrUnsupportedFormat = errors.New("unsupported file format, use CSV or Excel")

	// ErrNoHeader is returned when a source has no non-blank row
	ErrNoHeader = errors.New("no header row found")

	// ErrTooManyRows is returned when a source exceeds the configured row limit
	ErrTooManyRows = errors.New("too many rows")
)

// ColumnError lists required columns absent from the header
type ColumnError struct {
	Missing []string
}

func (e *ColumnError) Error() string {
	return "Missing columns: " + strings.Join(e.Missing, ", ")
}

// RowIssue describes one unconvertible cell. Line is the 1-based row number
// in the source, header included.
type RowIssue struct {
	Line    int    `json:"line"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (i RowIssue) String() string {
	return fmt.Sprintf("line %d: %s %q %s", i.Line, i.Column, i.Value, i.Message)
}

// ParseError collects every RowIssue found in a source
type ParseError struct {
	Source string
	Issues []RowIssue
}

const maxListedIssues = 5

func (e *ParseError) Error() string {
	parts := make([]string, 0, maxListedIssues)
	for i, issue := range e.Issues {
		if i == maxListedIssues {
			break
		}
		parts = append(parts, issue.String())
	}

	msg := fmt.Sprintf("%s: %d invalid cell(s): %s", e.Source, len(e.Issues), strings.Join(parts, "; "))
	if len(e.Issues) > maxListedIssues {
		msg += fmt.Sprintf("; and %d more", len(e.Issues)-maxListedIssues)
	}
	return msg
}
