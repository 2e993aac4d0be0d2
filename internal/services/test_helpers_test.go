package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workpulse/internal/config"
	apierrors "workpulse/internal/errors"
)

const rosterHeader = "Employee_ID,Name,Department,Employment_Type,Actual_Hours,Leave_Days\n"

// MockRowFetcher is a mock for the RowFetcher interface
type MockRowFetcher struct {
	mock.Mock
}

func (m *MockRowFetcher) FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	args := m.Called(ctx, spreadsheetID, readRange)
	if rows := args.Get(0); rows != nil {
		return rows.([][]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPDFPrinter is a mock for the PDFPrinter interface
type MockPDFPrinter struct {
	mock.Mock
}

func (m *MockPDFPrinter) Render(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if body := args.Get(0); body != nil {
		return body.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Upload.MaxSizeBytes = 1 << 20
	cfg.Sample.MaxCount = 500
	return cfg
}

func newTestService(t *testing.T, deps ProductivityDeps) *ProductivityService {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = testLogger()
	}
	svc, err := NewProductivityService(testConfig(), deps)
	require.NoError(t, err)
	return svc
}

// requireKind asserts err is an *apierrors.Error of the given kind and returns it
func requireKind(t *testing.T, err error, want apierrors.Kind) *apierrors.Error {
	t.Helper()
	require.Error(t, err)
	var typed *apierrors.Error
	require.True(t, errors.As(err, &typed), "expected *apierrors.Error, got %T: %v", err, err)
	require.Equal(t, want, typed.Kind, typed.Error())
	return typed
}
