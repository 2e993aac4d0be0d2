package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"workpulse/internal/security"
	"workpulse/pkg/contracts/domain"
)

// Format identifies an output format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name with or without a leading dot
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatXLSX, FormatCSV, FormatPDF, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// ReportFilename names a download: productivity_report_20240131_142500.xlsx
func ReportFilename(now time.Time, f Format) string {
	return fmt.Sprintf("productivity_report_%s.%s", now.Format("20060102_150405"), f)
}

// EnrichedHeaders are the column titles of every tabular export
var EnrichedHeaders = []string{
	"Employee_ID",
	"Name",
	"Department",
	"Employment_Type",
	"Actual_Hours",
	"Leave_Days",
	"Standard_Hours",
	"Leave_Hours_Deduction",
	"Expected_Hours",
	"Productivity_Percentage",
	"Productivity_Status",
}

// RosterHeaders are the input columns, in the order sample files use
var RosterHeaders = EnrichedHeaders[:6:6]

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// rosterRow renders the input columns of a record. Free-text columns are
// sanitised so a spreadsheet opening the CSV never evaluates them.
func rosterRow(rec domain.EmployeeRecord) []string {
	return []string{
		security.SanitizeCell(rec.EmployeeID),
		security.SanitizeCell(rec.Name),
		security.SanitizeCell(rec.Department),
		rec.EmploymentType.String(),
		formatFloat(rec.ActualHours),
		formatInt(rec.LeaveDays),
	}
}

// enrichedRow renders every column of an enriched record as text
func enrichedRow(rec domain.EnrichedRecord) []string {
	return append(rosterRow(rec.EmployeeRecord),
		formatFloat(rec.StandardHours),
		formatFloat(rec.LeaveHoursDeduction),
		formatFloat(rec.ExpectedHours),
		formatFloat(rec.ProductivityPercentage),
		string(rec.ProductivityStatus),
	)
}

// enrichedCells keeps numbers numeric for spreadsheet cells
func enrichedCells(rec domain.EnrichedRecord) []interface{} {
	return []interface{}{
		rec.EmployeeID,
		rec.Name,
		rec.Department,
		rec.EmploymentType.String(),
		rec.ActualHours,
		rec.LeaveDays,
		rec.StandardHours,
		rec.LeaveHoursDeduction,
		rec.ExpectedHours,
		rec.ProductivityPercentage,
		string(rec.ProductivityStatus),
	}
}
