package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"workpulse/pkg/contracts/domain"
)

// Parser reads roster sources into employee records
type Parser struct {
	logger  *slog.Logger
	maxRows int
}

// NewParser creates a parser. maxRows bounds the number of data rows per
// source; zero means no limit.
func NewParser(logger *slog.Logger, maxRows int) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:  logger.With(slog.String("component", "roster_parser")),
		maxRows: maxRows,
	}
}

// SupportedExtensions lists the file extensions Parse understands
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// ParseFile opens path and parses it according to its extension
func (p *Parser) ParseFile(ctx context.Context, path string) ([]domain.EmployeeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, filepath.Base(path), f)
}

// Parse reads a roster from r. The format is chosen from the extension of name.
func (p *Parser) Parse(ctx context.Context, name string, r io.Reader) ([]domain.EmployeeRecord, error) {
	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return p.ParseRows(ctx, name, rows)
}

// ParseRows converts a header row plus data rows into records. Blank rows are
// skipped, including any before the header.
func (p *Parser) ParseRows(ctx context.Context, source string, rows [][]string) ([]domain.EmployeeRecord, error) {
	headerAt := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoHeader)
	}

	index, err := mapColumns(rows[headerAt])
	if err != nil {
		p.logger.WarnContext(ctx, "roster rejected",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return nil, err
	}

	records := make([]domain.EmployeeRecord, 0, len(rows)-headerAt-1)
	var issues []RowIssue

	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		if p.maxRows > 0 && len(records) == p.maxRows {
			return nil, fmt.Errorf("%s: %w: limit is %d", source, ErrTooManyRows, p.maxRows)
		}

		rec, rowIssues := buildRecord(row, index, i+1)
		issues = append(issues, rowIssues...)
		records = append(records, rec)
	}

	if len(issues) > 0 {
		p.logger.WarnContext(ctx, "roster has invalid cells",
			slog.String("source", source),
			slog.Int("issues", len(issues)))
		return nil, &ParseError{Source: source, Issues: issues}
	}

	p.logger.DebugContext(ctx, "roster parsed",
		slog.String("source", source),
		slog.Int("records", len(records)))
	return records, nil
}

func buildRecord(row []string, index map[string]int, line int) (domain.EmployeeRecord, []RowIssue) {
	cell := func(col string) string {
		if i := index[col]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var issues []RowIssue
	rec := domain.EmployeeRecord{
		EmployeeID: cell(ColumnEmployeeID),
		Name:       cell(ColumnName),
		Department: cell(ColumnDepartment),
		Line:       line,
	}

	rawType := cell(ColumnEmploymentType)
	if t, err := domain.ParseEmploymentType(rawType); err == nil {
		rec.EmploymentType = t
	} else {
		rec.EmploymentType = domain.EmploymentType(rawType)
	}

	raw := cell(ColumnActualHours)
	if hours, err := parseNumber(raw); err != nil {
		issues = append(issues, RowIssue{Line: line, Column: ColumnActualHours, Value: raw, Message: err.Error()})
	} else {
		rec.ActualHours = hours
	}

	raw = cell(ColumnLeaveDays)
	if days, err := parseWhole(raw); err != nil {
		issues = append(issues, RowIssue{Line: line, Column: ColumnLeaveDays, Value: raw, Message: err.Error()})
	} else {
		rec.LeaveDays = days
	}

	return rec, issues
}

var (
	errBlankNumber = errors.New("is required")
	errNotNumber   = errors.New("is not a number")
	errNotWhole    = errors.New("is not a whole number")
)

// parseNumber accepts plain and thousands-separated decimals
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errBlankNumber
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}
	return v, nil
}

// parseWhole accepts integers written as "2" or "2.0". A blank cell is zero.
func parseWhole(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, errNotWhole
	}
	return int(v), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// rows[i] holds the record starting on line i+1. encoding/csv drops
	// empty lines, so they are put back as blank rows.
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, nil)
		}
		rows = append(rows, record)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	return file.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

func readXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no worksheet found")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
