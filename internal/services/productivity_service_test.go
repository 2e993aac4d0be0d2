package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"workpulse/internal/dataprocessing"
	apierrors "workpulse/internal/errors"
	"workpulse/internal/exporter"
	"workpulse/internal/productivity"
	"workpulse/internal/sample"
	"workpulse/internal/shared/testutil"
	"workpulse/internal/validation"
	api "workpulse/pkg/contracts/api/v1"
	"workpulse/pkg/contracts/domain"
)

func TestProductivityService_AnalyzeUpload(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})
	body := rosterHeader +
		"EMP001,Alice,Engineering,Full-Time,180,0\n" +
		"EMP002,Bob,Sales,Part-Time,50,2\n"

	resp, err := svc.AnalyzeUpload(context.Background(), "roster.csv", int64(len(body)), strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, "roster.csv", resp.SourceName)
	assert.NotEmpty(t, resp.AnalysisID)
	require.Len(t, resp.Data, 2)
	assert.Len(t, resp.FullTimeData, 1)
	assert.Len(t, resp.PartTimeData, 1)

	alice := resp.Data[0]
	assert.Equal(t, 90.0, alice.ProductivityPercentage)
	assert.Equal(t, domain.StatusProductive, alice.ProductivityStatus)

	bob := resp.Data[1]
	assert.Equal(t, 84.0, bob.ExpectedHours)
	assert.Equal(t, 59.52, bob.ProductivityPercentage)
	assert.Equal(t, domain.StatusNotProductive, bob.ProductivityStatus)

	assert.Equal(t, 2, resp.Summary.TotalEmployees)
	assert.Equal(t, 1, resp.Summary.ProductiveCount)
	require.NotNil(t, resp.Summary.AverageProductivity)
	assert.Equal(t, 74.76, *resp.Summary.AverageProductivity)
}

func TestProductivityService_AnalyzeUploadErrors(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})

	tests := []struct {
		name     string
		filename string
		size     int64
		body     string
		wantType apierrors.Kind
		check    func(t *testing.T, typed *apierrors.Error)
	}{
		{
			name:     "unsupported extension",
			filename: "roster.txt",
			body:     rosterHeader,
			wantType: apierrors.KindValidation,
			check: func(t *testing.T, typed *apierrors.Error) {
				assert.Equal(t, "Unsupported file format. Use CSV or Excel", typed.Message)
				assert.ErrorIs(t, typed, validation.ErrUnsupportedExtension)
			},
		},
		{
			name:     "file too large",
			filename: "roster.csv",
			size:     2 << 20,
			body:     rosterHeader,
			wantType: apierrors.KindValidation,
			check: func(t *testing.T, typed *apierrors.Error) {
				assert.ErrorIs(t, typed, validation.ErrFileTooLarge)
				assert.Equal(t, "File exceeds the upload size limit", typed.Message)
				assert.NotEmpty(t, typed.Fields["details"])
			},
		},
		{
			name:     "missing columns",
			filename: "roster.csv",
			body:     "Employee_ID,Name,Department,Employment_Type\nE1,A,Eng,Full-Time\n",
			wantType: apierrors.KindValidation,
			check: func(t *testing.T, typed *apierrors.Error) {
				assert.Equal(t, "Missing required columns", typed.Message)
				assert.Equal(t, []string{"Actual_Hours", "Leave_Days"}, typed.Fields["missing_columns"])
				assert.Equal(t, 1, strings.Count(typed.Error(), "Missing columns: Actual_Hours, Leave_Days"))
			},
		},
		{
			name:     "invalid employment type",
			filename: "roster.csv",
			body:     rosterHeader + "E1,A,Eng,Contractor,100,0\n",
			wantType: apierrors.KindValidation,
			check: func(t *testing.T, typed *apierrors.Error) {
				rows, ok := typed.Fields["errors"].([]productivity.RowError)
				require.True(t, ok)
				require.Len(t, rows, 1)
				assert.Equal(t, "employment_type", rows[0].Field)
				assert.Equal(t, "E1", rows[0].EmployeeID)
				assert.Equal(t, 2, rows[0].Row, "rows are numbered by file line")
				assert.Equal(t, "Invalid records", typed.Message)
			},
		},
		{
			name:     "invalid employment type after blank lines",
			filename: "roster.csv",
			body:     rosterHeader + "E1,A,Eng,Full-Time,180,0\n\n,,,,,\nE2,B,Ops,Contractor,100,0\n",
			wantType: apierrors.KindValidation,
			check: func(t *testing.T, typed *apierrors.Error) {
				rows, ok := typed.Fields["errors"].([]productivity.RowError)
				require.True(t, ok)
				require.Len(t, rows, 1)
				assert.Equal(t, "E2", rows[0].EmployeeID)
				assert.Equal(t, 5, rows[0].Row)
			},
		},
		{
			name:     "unparseable hours",
			filename: "roster.csv",
			body:     rosterHeader + "E1,A,Eng,Full-Time,lots,0\n",
			wantType: apierrors.KindParsing,
			check: func(t *testing.T, typed *apierrors.Error) {
				issues, ok := typed.Fields["errors"].([]dataprocessing.RowIssue)
				require.True(t, ok)
				require.Len(t, issues, 1)
				assert.Equal(t, 2, issues[0].Line)
				assert.Equal(t, "lots", issues[0].Value)
				assert.Equal(t, "Invalid cell values", typed.Message)
				assert.Equal(t, 1, strings.Count(typed.Error(), "is not a number"))
			},
		},
		{
			name:     "empty file",
			filename: "roster.csv",
			body:     "",
			wantType: apierrors.KindValidation,
			check: func(t *testing.T, typed *apierrors.Error) {
				assert.ErrorIs(t, typed, dataprocessing.ErrNoHeader)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.size
			if size == 0 {
				size = int64(len(tt.body))
			}
			_, err := svc.AnalyzeUpload(context.Background(), tt.filename, size, strings.NewReader(tt.body))
			typed := requireKind(t, err, tt.wantType)
			if tt.check != nil {
				tt.check(t, typed)
			}
		})
	}
}

func TestProductivityService_AnalyzeUploadHeaderOnly(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})

	resp, err := svc.AnalyzeUpload(context.Background(), "roster.csv", int64(len(rosterHeader)), strings.NewReader(rosterHeader))
	require.NoError(t, err)

	assert.Empty(t, resp.Data)
	assert.Equal(t, 0, resp.Summary.TotalEmployees)
	assert.Nil(t, resp.Summary.AverageProductivity)
}

func TestProductivityService_AnalyzeSheet(t *testing.T) {
	ctx := context.Background()
	sheetID := "1AbCdEfGhIjKlMnOp"

	t.Run("disabled", func(t *testing.T) {
		svc := newTestService(t, ProductivityDeps{})
		_, err := svc.AnalyzeSheet(ctx, api.SheetAnalyzeRequest{SpreadsheetID: sheetID})
		typed := requireKind(t, err, apierrors.KindUnavailable)
		assert.ErrorIs(t, typed, ErrSheetsUnavailable)
	})

	t.Run("invalid request", func(t *testing.T) {
		fetcher := new(MockRowFetcher)
		svc := newTestService(t, ProductivityDeps{Sheets: fetcher})

		_, err := svc.AnalyzeSheet(ctx, api.SheetAnalyzeRequest{SpreadsheetID: "short"})
		typed := requireKind(t, err, apierrors.KindValidation)
		fieldErrs, ok := typed.Fields["errors"].(validation.Errors)
		require.True(t, ok)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "spreadsheet_id", fieldErrs[0].Field)
		fetcher.AssertNotCalled(t, "FetchRows", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		fetcher := new(MockRowFetcher)
		fetcher.On("FetchRows", mock.Anything, sheetID, "Roster!A1:F").Return([][]string{
			{"Employee_ID", "Name", "Department", "Employment_Type", "Actual_Hours", "Leave_Days"},
			{"E1", "Ann", "HR", "Part-Time", "95", "0"},
		}, nil)
		svc := newTestService(t, ProductivityDeps{Sheets: fetcher})

		resp, err := svc.AnalyzeSheet(ctx, api.SheetAnalyzeRequest{SpreadsheetID: sheetID, Range: "Roster!A1:F"})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 95.0, resp.Data[0].ProductivityPercentage)
		assert.Equal(t, sheetID, resp.SourceName)
		fetcher.AssertExpectations(t)
	})

	t.Run("fetch failure", func(t *testing.T) {
		fetcher := new(MockRowFetcher)
		fetcher.On("FetchRows", mock.Anything, sheetID, "").Return(nil, errors.New("googleapi: Error 404"))
		svc := newTestService(t, ProductivityDeps{Sheets: fetcher})

		_, err := svc.AnalyzeSheet(ctx, api.SheetAnalyzeRequest{SpreadsheetID: sheetID})
		requireKind(t, err, apierrors.KindUnavailable)
	})
}

func TestProductivityService_AnalyzeRecordsCanceled(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := new(MockRowFetcher)
	fetcher.On("FetchRows", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)
	svc.sheets = fetcher

	_, err := svc.AnalyzeSheet(ctx, api.SheetAnalyzeRequest{SpreadsheetID: "1AbCdEfGhIjKlMnOp"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func exportRequest() api.ExportRequest {
	return api.ExportRequest{Data: []domain.EmployeeRecord{
		{EmployeeID: "EMP001", Name: "Alice", Department: "Engineering", EmploymentType: domain.EmploymentFullTime, ActualHours: 180},
		{EmployeeID: "EMP002", Name: "Bob", Department: "Sales", EmploymentType: domain.EmploymentPartTime, ActualHours: 50, LeaveDays: 2},
	}}
}

func TestProductivityService_ExportCSV(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := newTestService(t, ProductivityDeps{Logger: logger})

	dl, err := svc.Export(context.Background(), exporter.FormatCSV, exportRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dl.Filename, "productivity_report_"))
	assert.True(t, strings.HasSuffix(dl.Filename, ".csv"))
	assert.Equal(t, exporter.FormatCSV.ContentType(), dl.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(dl.Body, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exporter.EnrichedHeaders, rows[0])
	assert.Equal(t, "EMP002", rows[2][0])
	assert.Contains(t, rows[2], "59.52")
	assert.Contains(t, rows[2], string(domain.StatusNotProductive))

	attrs := testutil.AssertLogged(t, logs, slog.LevelInfo, "report exported")
	assert.Equal(t, "csv", attrs["format"])
	assert.Equal(t, int64(2), attrs["records"])
	testutil.AssertNoErrors(t, logs)
}

func TestProductivityService_ExportXLSX(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})

	dl, err := svc.Export(context.Background(), exporter.FormatXLSX, exportRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(dl.Filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(dl.Body))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, exporter.SheetAllEmployees, sheets[0])
	assert.Contains(t, sheets, exporter.SheetSummary)
}

func TestProductivityService_ExportPDF(t *testing.T) {
	printer := new(MockPDFPrinter)
	printer.On("Render", mock.Anything, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, "Employee Productivity Report") && strings.Contains(html, "EMP002")
	})).Return([]byte("%PDF-1.4"), nil)
	svc := newTestService(t, ProductivityDeps{PDF: printer})

	dl, err := svc.Export(context.Background(), exporter.FormatPDF, exportRequest())
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4"), dl.Body)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.True(t, strings.HasSuffix(dl.Filename, ".pdf"))
	printer.AssertExpectations(t)
}

func TestProductivityService_ExportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("pdf without renderer", func(t *testing.T) {
		svc := newTestService(t, ProductivityDeps{})
		_, err := svc.Export(ctx, exporter.FormatPDF, exportRequest())
		requireKind(t, err, apierrors.KindUnavailable)
	})

	t.Run("pdf renderer failure", func(t *testing.T) {
		printer := new(MockPDFPrinter)
		printer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("browser crashed"))
		svc := newTestService(t, ProductivityDeps{PDF: printer})

		_, err := svc.Export(ctx, exporter.FormatPDF, exportRequest())
		typed := requireKind(t, err, apierrors.KindExport)
		assert.Equal(t, "Failed to export pdf report", typed.Message)
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := newTestService(t, ProductivityDeps{})
		_, err := svc.Export(ctx, exporter.FormatJSON, exportRequest())
		typed := requireKind(t, err, apierrors.KindValidation)
		assert.ErrorIs(t, typed, ErrUnsupportedExport)
	})

	t.Run("empty data", func(t *testing.T) {
		svc := newTestService(t, ProductivityDeps{})
		_, err := svc.Export(ctx, exporter.FormatCSV, api.ExportRequest{Data: []domain.EmployeeRecord{}})
		typed := requireKind(t, err, apierrors.KindValidation)
		fieldErrs, ok := typed.Fields["errors"].(validation.Errors)
		require.True(t, ok)
		assert.Equal(t, "data", fieldErrs[0].Field)
	})

	t.Run("invalid record", func(t *testing.T) {
		svc := newTestService(t, ProductivityDeps{})
		req := exportRequest()
		req.Data[1].EmploymentType = "Contractor"
		req.Data[1].LeaveDays = -1

		_, err := svc.Export(ctx, exporter.FormatCSV, req)
		typed := requireKind(t, err, apierrors.KindValidation)
		fieldErrs, ok := typed.Fields["errors"].(validation.Errors)
		require.True(t, ok)
		assert.Len(t, fieldErrs, 2)
	})
}

func TestProductivityService_RenderJSON(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})
	resp, err := svc.AnalyzeRecords(context.Background(), SourceFile, exportRequest().Data)
	require.NoError(t, err)

	dl, err := svc.Render(context.Background(), exporter.FormatJSON, "", resp.AnalysisResult)
	require.NoError(t, err)
	assert.Equal(t, "application/json", dl.ContentType)
	assert.Contains(t, string(dl.Body), `"productivity_percentage": 59.52`)
}

func TestProductivityService_Sample(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, ProductivityDeps{})

	t.Run("xlsx", func(t *testing.T) {
		dl, err := svc.Sample(ctx, 5, exporter.FormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, "sample_employee_data_5.xlsx", dl.Filename)

		f, err := excelize.OpenReader(bytes.NewReader(dl.Body))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(sample.SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 6)
		assert.Equal(t, exporter.RosterHeaders, rows[0])
		assert.Equal(t, "EMP0001", rows[1][0])
	})

	t.Run("csv is reproducible with a seed", func(t *testing.T) {
		first, err := svc.SampleWithSeed(ctx, 20, exporter.FormatCSV, 42)
		require.NoError(t, err)
		second, err := svc.SampleWithSeed(ctx, 20, exporter.FormatCSV, 42)
		require.NoError(t, err)

		assert.Equal(t, "sample_employee_data_20.csv", first.Filename)
		assert.Equal(t, first.Body, second.Body)
	})

	t.Run("sample feeds back into the analyzer", func(t *testing.T) {
		dl, err := svc.SampleWithSeed(ctx, 50, exporter.FormatCSV, 7)
		require.NoError(t, err)

		resp, err := svc.AnalyzeUpload(ctx, dl.Filename, int64(len(dl.Body)), bytes.NewReader(dl.Body))
		require.NoError(t, err)
		assert.Equal(t, 50, resp.Summary.TotalEmployees)
	})

	for _, count := range []int{0, -3, 501} {
		_, err := svc.Sample(ctx, count, exporter.FormatXLSX)
		typed := requireKind(t, err, apierrors.KindValidation)
		assert.ErrorIs(t, typed, ErrInvalidSampleCount)
	}

	_, err := svc.Sample(ctx, 10, exporter.FormatPDF)
	typed := requireKind(t, err, apierrors.KindValidation)
	assert.ErrorIs(t, typed, ErrUnsupportedSample)
}

func TestProductivityService_Accessors(t *testing.T) {
	svc := newTestService(t, ProductivityDeps{})

	assert.Equal(t, productivity.DefaultPolicy(), svc.Policy())
	assert.Equal(t, 500, svc.SampleLimits().MaxCount)
	assert.Equal(t, []string{".csv", ".xlsx", ".xls"}, svc.AllowedExtensions())
}

func TestNewProductivityService_InvalidPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Policy.Threshold = -1

	_, err := NewProductivityService(cfg, ProductivityDeps{Logger: testLogger()})
	require.Error(t, err)
}
