package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"workpulse/pkg/contracts/domain"
)

// utf8BOM makes Excel open the enriched export as UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter renders rosters and enriched reports as CSV
type CSVWriter struct {
	logger *slog.Logger
}

func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteEnriched writes the full report table. bom prefixes a UTF-8 byte
// order mark.
func (c *CSVWriter) WriteEnriched(w io.Writer, records []domain.EnrichedRecord, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	return c.writeTable(w, EnrichedHeaders, len(records), func(i int) []string {
		return enrichedRow(records[i])
	})
}

// WriteRoster writes the input columns only, in the layout the parser reads
func (c *CSVWriter) WriteRoster(w io.Writer, records []domain.EmployeeRecord) error {
	return c.writeTable(w, RosterHeaders, len(records), func(i int) []string {
		return rosterRow(records[i])
	})
}

func (c *CSVWriter) writeTable(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range n {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	c.logger.Debug("csv written", slog.Int("rows", n), slog.Int("columns", len(header)))
	return nil
}
