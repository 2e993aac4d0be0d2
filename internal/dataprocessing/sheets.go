package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrSheetsNotConfigured is returned when no Google credentials are available
var ErrSheetsNotConfigured = errors.New("google sheets source is not configured")

// SheetsSource reads roster ranges from Google Sheets
type SheetsSource struct {
	service      *sheets.Service
	defaultRange string
	logger       *slog.Logger
}

// SheetsClientOptions builds client options from a service-account
// credentials file or an API key. The credentials file wins when both are set.
func SheetsClientOptions(credentialsFile, apiKey string) ([]option.ClientOption, error) {
	switch {
	case credentialsFile != "":
		return []option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		}, nil
	case apiKey != "":
		return []option.ClientOption{option.WithAPIKey(apiKey)}, nil
	default:
		return nil, ErrSheetsNotConfigured
	}
}

// NewSheetsSource creates a Sheets client. defaultRange is used when a
// caller passes an empty range.
func NewSheetsSource(ctx context.Context, logger *slog.Logger, defaultRange string, opts ...option.ClientOption) (*SheetsSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsSource{
		service:      service,
		defaultRange: defaultRange,
		logger:       logger.With(slog.String("component", "sheets_source")),
	}, nil
}

// FetchRows returns the cell grid of a range as strings. Cells are read
// unformatted so numbers arrive without locale separators.
func (s *SheetsSource) FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	if readRange == "" {
		readRange = s.defaultRange
	}

	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %q: %w", readRange, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}

	s.logger.InfoContext(ctx, "sheet range fetched",
		slog.String("spreadsheet_id", spreadsheetID),
		slog.String("range", readRange),
		slog.Int("rows", len(rows)))
	return rows, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
