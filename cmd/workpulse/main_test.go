package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workpulse/pkg/contracts/domain"
)

const rosterHeader = "Employee_ID,Name,Department,Employment_Type,Actual_Hours,Leave_Days\n"

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("WORKPULSE_LOGGING_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeRoster(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"analyze without inputs", []string{"analyze"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, tt.args...)
			assert.ErrorIs(t, err, errUsage)
			assert.Contains(t, stderr, "Usage: workpulse")
		})
	}
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "WorkPulse v")
}

func TestRun_Sample(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sample.csv")

	stdout, _, err := runCLI(t, "sample", "-count", "20", "-seed", "7", "-out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 20 sample employees")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 21, strings.Count(string(data), "\n"))

	again := filepath.Join(dir, "again.csv")
	_, _, err = runCLI(t, "sample", "-count", "20", "-seed", "7", "-out", again)
	require.NoError(t, err)
	repeat, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, data, repeat, "a fixed seed must reproduce the roster")
}

func TestRun_SampleNeverOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "roster.csv")

	_, _, err := runCLI(t, "sample", "-count", "5", "-seed", "1", "-out", out)
	require.NoError(t, err, "missing parent directories are created")
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, _, err = runCLI(t, "sample", "-count", "9", "-seed", "2", "-out", out)
	assert.ErrorIs(t, err, os.ErrExist)

	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, after)
}

func TestRun_SampleCountOutOfRange(t *testing.T) {
	_, _, err := runCLI(t, "sample", "-count", "0", "-out", filepath.Join(t.TempDir(), "x.xlsx"))
	assert.Error(t, err)
}

func TestRun_AnalyzeFiles(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "reports")

	writeRoster(t, in, "march.csv", rosterHeader+
		"EMP001,Alice,Engineering,Full-Time,180,0\n"+
		"EMP002,Bob,Sales,Part-Time,50,2\n")
	writeRoster(t, in, "april.csv", rosterHeader+
		"EMP003,Carol,HR,Full-Time,200,0\n")

	stdout, _, err := runCLI(t, "analyze", "-out", out, "-format", "json", "-workers", "2", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "march.csv: 2 employees, 1 productive, 1 not productive, average 74.76%")
	assert.Contains(t, stdout, "april.csv: 1 employees")

	data, err := os.ReadFile(filepath.Join(out, "march_productivity_report.json"))
	require.NoError(t, err)

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 2, result.Summary.TotalEmployees)
	assert.Len(t, result.FullTimeData, 1)
	assert.Len(t, result.PartTimeData, 1)

	assert.FileExists(t, filepath.Join(out, "april_productivity_report.json"))
}

func TestRun_AnalyzeKeepsEarlierReports(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	roster := writeRoster(t, in, "march.csv", rosterHeader+"EMP001,Alice,Engineering,Full-Time,180,0\n")

	_, _, err := runCLI(t, "analyze", "-out", out, "-format", "csv", roster)
	require.NoError(t, err)
	stdout, _, err := runCLI(t, "analyze", "-out", out, "-format", "csv", roster)
	require.NoError(t, err)

	assert.Contains(t, stdout, "march_productivity_report_2.csv")
	assert.FileExists(t, filepath.Join(out, "march_productivity_report.csv"))
	assert.FileExists(t, filepath.Join(out, "march_productivity_report_2.csv"))
}

func TestRun_AnalyzePartialFailure(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	good := writeRoster(t, in, "good.csv", rosterHeader+"EMP001,Alice,Engineering,Full-Time,180,0\n")
	bad := writeRoster(t, in, "bad.csv", "Employee_ID,Name\nEMP001,Alice\n")

	_, _, err := runCLI(t, "analyze", "-out", out, "-format", "csv", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
	assert.NotContains(t, err.Error(), "good.csv")

	assert.FileExists(t, filepath.Join(out, "good_productivity_report.csv"))
	assert.NoFileExists(t, filepath.Join(out, "bad_productivity_report.csv"))
}

func TestRun_AnalyzeSampleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "roster.xlsx")

	_, _, err := runCLI(t, "sample", "-count", "15", "-seed", "42", "-out", roster)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "analyze", "-out", dir, "-format", "xlsx", roster)
	require.NoError(t, err)
	assert.Contains(t, stdout, "roster.xlsx: 15 employees")
	assert.FileExists(t, filepath.Join(dir, "roster_productivity_report.xlsx"))
}

func TestRun_AnalyzeErrors(t *testing.T) {
	in := t.TempDir()
	roster := writeRoster(t, in, "roster.csv", rosterHeader+"EMP001,Alice,Engineering,Full-Time,180,0\n")

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := runCLI(t, "analyze", "-format", "docx", roster)
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("bad worker count", func(t *testing.T) {
		_, _, err := runCLI(t, "analyze", "-workers", "0", roster)
		assert.Error(t, err)
	})

	t.Run("pdf without chrome", func(t *testing.T) {
		t.Setenv("WORKPULSE_REPORT_CHROME_PATH", "/nonexistent/chrome")
		_, _, err := runCLI(t, "analyze", "-out", t.TempDir(), "-format", "pdf", roster)
		assert.Error(t, err)
	})

	t.Run("sheet without credentials", func(t *testing.T) {
		t.Setenv("WORKPULSE_SHEETS_CREDENTIALS_FILE", "")
		t.Setenv("WORKPULSE_SHEETS_API_KEY", "")
		_, _, err := runCLI(t, "analyze", "-out", t.TempDir(), "-sheet", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
		assert.ErrorContains(t, err, "sheets credentials are not configured")
	})

	t.Run("unsupported input", func(t *testing.T) {
		txt := writeRoster(t, in, "notes.txt", "hello")
		_, _, err := runCLI(t, "analyze", "-out", t.TempDir(), txt)
		assert.Error(t, err)
	})
}
