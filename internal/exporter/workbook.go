package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"workpulse/internal/productivity"
	"workpulse/pkg/contracts/domain"
)

// Sheet names used by Workbook
const (
	SheetAllEmployees = productivity.SegmentAll
	SheetSummary      = "Summary"
)

// Workbook writes multi-sheet XLSX reports
type Workbook struct {
	logger *slog.Logger
}

// NewWorkbook creates a workbook exporter
func NewWorkbook(logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{logger: logger.With(slog.String("component", "workbook_exporter"))}
}

// Write renders records into an XLSX and streams it to w. The first sheet
// holds every record; each non-empty segment gets its own sheet, followed by
// a Summary sheet.
func (b *Workbook) Write(w io.Writer, records []domain.EnrichedRecord, summary domain.SummaryStats) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetAllEmployees); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err := writeRecordSheet(f, SheetAllEmployees, records, headerStyle); err != nil {
		return err
	}

	sheets := []string{SheetAllEmployees}
	for _, seg := range productivity.Segments(records) {
		if len(seg.Records) == 0 {
			continue
		}
		if _, err := f.NewSheet(seg.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", seg.Name, err)
		}
		if err := writeRecordSheet(f, seg.Name, seg.Records, headerStyle); err != nil {
			return err
		}
		sheets = append(sheets, seg.Name)
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, summary, headerStyle); err != nil {
		return err
	}
	sheets = append(sheets, SheetSummary)

	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	b.logger.Debug("workbook written",
		slog.Int("records", len(records)),
		slog.Any("sheets", sheets))
	return nil
}

// WriteRoster writes input records to a single sheet, as sample files are laid out
func WriteRoster(w io.Writer, sheet string, records []domain.EmployeeRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		rows[i] = []interface{}{
			rec.EmployeeID,
			rec.Name,
			rec.Department,
			rec.EmploymentType.String(),
			rec.ActualHours,
			rec.LeaveDays,
		}
	}
	if err := writeRows(f, sheet, RosterHeaders, rows, 0); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRecordSheet(f *excelize.File, sheet string, records []domain.EnrichedRecord, headerStyle int) error {
	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		rows[i] = enrichedCells(rec)
	}
	return writeRows(f, sheet, EnrichedHeaders, rows, headerStyle)
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}

	if headerStyle != 0 {
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header on %s: %w", sheet, err)
		}
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s domain.SummaryStats, headerStyle int) error {
	rows := [][]interface{}{
		{"Total Employees", s.TotalEmployees},
		{"Productive", s.ProductiveCount},
		{"Not Productive", s.NotProductiveCount},
		{"Average Productivity %", optionalFloat(s.AverageProductivity)},
	}

	segments := []struct {
		label string
		stats *domain.SegmentStats
	}{
		{"Full-Time", s.FullTimeStats},
		{"Part-Time", s.PartTimeStats},
	}
	for _, seg := range segments {
		if seg.stats == nil {
			continue
		}
		rows = append(rows,
			[]interface{}{},
			[]interface{}{seg.label + " Employees", seg.stats.Count},
			[]interface{}{seg.label + " Productive", seg.stats.Productive},
			[]interface{}{seg.label + " Not Productive", seg.stats.NotProductive},
			[]interface{}{seg.label + " Average Productivity %", seg.stats.AverageProductivity},
			[]interface{}{seg.label + " Average Hours", seg.stats.AverageHours},
		)
	}

	if len(s.DepartmentStats) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Department", "Average Productivity %", "Employees"})
		depts := make([]string, 0, len(s.DepartmentStats))
		for d := range s.DepartmentStats {
			depts = append(depts, d)
		}
		sort.Strings(depts)
		for _, d := range depts {
			ds := s.DepartmentStats[d]
			rows = append(rows, []interface{}{d, ds.AverageProductivity, ds.EmployeeCount})
		}
	}

	return writeRows(f, SheetSummary, []string{"Metric", "Value"}, rows, headerStyle)
}

// optionalFloat leaves the cell empty for a nil value
func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
