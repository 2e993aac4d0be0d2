package exporter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"workpulse/internal/productivity"
	"workpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// analysed runs the fixture roster through the calculator
func analysed(t *testing.T, records []domain.EmployeeRecord) domain.AnalysisResult {
	t.Helper()
	calc, err := productivity.NewCalculator(productivity.DefaultPolicy(), testLogger())
	require.NoError(t, err)
	result, err := calc.Analyze(context.Background(), records)
	require.NoError(t, err)
	return result
}

var fixtureRoster = []domain.EmployeeRecord{
	{EmployeeID: "EMP0001", Name: "Employee 1", Department: "Engineering", EmploymentType: domain.EmploymentFullTime, ActualHours: 180, LeaveDays: 0},
	{EmployeeID: "EMP0002", Name: "Employee 2", Department: "Sales", EmploymentType: domain.EmploymentPartTime, ActualHours: 50, LeaveDays: 2},
	{EmployeeID: "EMP0003", Name: "A Very Long Employee Name Indeed", Department: "Customer Service Operations", EmploymentType: domain.EmploymentFullTime, ActualHours: 150, LeaveDays: 0},
}
