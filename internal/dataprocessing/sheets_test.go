package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestSheetsClientOptions(t *testing.T) {
	_, err := SheetsClientOptions("", "")
	assert.ErrorIs(t, err, ErrSheetsNotConfigured)

	opts, err := SheetsClientOptions("", "key")
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	opts, err = SheetsClientOptions("/etc/creds.json", "key")
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestSheetsSourceFetchRows(t *testing.T) {
	var gotPath, gotRender string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRender = r.URL.Query().Get("valueRenderOption")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"range": "Sheet1!A1:F3",
			"majorDimension": "ROWS",
			"values": [
				["Employee_ID", "Name", "Department", "Employment_Type", "Actual_Hours", "Leave_Days"],
				["EMP0001", "Employee 1", "Engineering", "Full-Time", 180, 0],
				["EMP0002", "Employee 2", "Sales", "Part-Time", 49.5, 2]
			]
		}`)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source, err := NewSheetsSource(context.Background(), logger, "A1:F",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	rows, err := source.FetchRows(context.Background(), "spreadsheet-123", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"EMP0002", "Employee 2", "Sales", "Part-Time", "49.5", "2"}, rows[2])
	assert.True(t, strings.Contains(gotPath, "spreadsheet-123"), gotPath)
	assert.True(t, strings.Contains(gotPath, "A1:F"), gotPath)
	assert.Equal(t, "UNFORMATTED_VALUE", gotRender)

	records, err := newTestParser(0).ParseRows(context.Background(), "sheet", rows)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 49.5, records[1].ActualHours)
}

func TestSheetsSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": {"code": 404, "message": "Requested entity was not found."}}`)
	}))
	defer srv.Close()

	source, err := NewSheetsSource(context.Background(), nil, "A1:F",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	_, err = source.FetchRows(context.Background(), "missing", "Sheet1!A1:F")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to read range "Sheet1!A1:F"`)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "180", cellString(180.0))
	assert.Equal(t, "179.994", cellString(179.994))
	assert.Equal(t, "true", cellString(true))
	assert.Equal(t, "x", cellString("x"))
}
