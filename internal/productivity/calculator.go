package productivity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"workpulse/pkg/contracts/domain"
)

// Calculator applies a Policy to employee records
type Calculator struct {
	policy Policy
	logger *slog.Logger
}

// NewCalculator creates a calculator bound to a validated copy of policy
func NewCalculator(policy Policy, logger *slog.Logger) (*Calculator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{
		policy: policy,
		logger: logger.With(slog.String("component", "productivity_calculator")),
	}, nil
}

// Policy returns the policy the calculator was built with
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate enriches every record with its derived productivity columns.
// Output order matches input order. If any record is invalid no output is
// produced and a *ValidationError lists every offending row.
func (c *Calculator) Calculate(ctx context.Context, records []domain.EmployeeRecord) ([]domain.EnrichedRecord, error) {
	start := time.Now()

	if rowErrs := c.validateRecords(records); len(rowErrs) > 0 {
		c.logger.WarnContext(ctx, "rejected record batch",
			slog.Int("records", len(records)),
			slog.Int("invalid_rows", len(rowErrs)))
		return nil, &ValidationError{Rows: rowErrs}
	}

	enriched := make([]domain.EnrichedRecord, len(records))
	for i, rec := range records {
		enriched[i] = c.enrich(rec)
	}

	c.logger.DebugContext(ctx, "calculated productivity",
		slog.Int("records", len(enriched)),
		slog.Duration("duration", time.Since(start)))

	return enriched, nil
}

// enrich derives the productivity columns for a record already known to be valid
func (c *Calculator) enrich(rec domain.EmployeeRecord) domain.EnrichedRecord {
	standard, _ := c.policy.StandardHours(rec.EmploymentType)
	deduction := float64(rec.LeaveDays) * c.policy.HoursPerLeaveDay
	expected := math.Max(MinExpectedHours, standard-deduction)

	percentage := round(rec.ActualHours/expected*100, c.policy.Precision)

	status := domain.StatusNotProductive
	if percentage >= c.policy.Threshold {
		status = domain.StatusProductive
	}

	out := domain.EnrichedRecord{
		EmployeeRecord:         rec,
		StandardHours:          standard,
		LeaveHoursDeduction:    deduction,
		ExpectedHours:          expected,
		ProductivityPercentage: percentage,
		ProductivityStatus:     status,
	}
	out.ActualHours = round(rec.ActualHours, c.policy.Precision)
	return out
}

func (c *Calculator) validateRecords(records []domain.EmployeeRecord) []RowError {
	var rowErrs []RowError
	for i, rec := range records {
		row := i + 1
		if rec.Line > 0 {
			row = rec.Line
		}
		id := strings.TrimSpace(rec.EmployeeID)

		if id == "" {
			rowErrs = append(rowErrs, RowError{Row: row, Field: "employee_id", Message: "is required"})
		}
		if !rec.EmploymentType.Valid() {
			rowErrs = append(rowErrs, RowError{
				Row:        row,
				EmployeeID: id,
				Field:      "employment_type",
				Message:    fmt.Sprintf("must be %s or %s (got %q)", domain.EmploymentFullTime, domain.EmploymentPartTime, string(rec.EmploymentType)),
			})
		}
		if math.IsNaN(rec.ActualHours) || math.IsInf(rec.ActualHours, 0) {
			rowErrs = append(rowErrs, RowError{Row: row, EmployeeID: id, Field: "actual_hours", Message: "must be a finite number"})
		} else if rec.ActualHours < 0 {
			rowErrs = append(rowErrs, RowError{Row: row, EmployeeID: id, Field: "actual_hours", Message: "must not be negative"})
		}
		if rec.LeaveDays < 0 {
			rowErrs = append(rowErrs, RowError{Row: row, EmployeeID: id, Field: "leave_days", Message: "must not be negative"})
		}
	}
	return rowErrs
}

// Analyze runs Calculate and Summarize and splits the employment-type segments
func (c *Calculator) Analyze(ctx context.Context, records []domain.EmployeeRecord) (domain.AnalysisResult, error) {
	enriched, err := c.Calculate(ctx, records)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	return domain.AnalysisResult{
		Summary:      c.Summarize(ctx, enriched),
		Data:         enriched,
		FullTimeData: FilterByEmploymentType(enriched, domain.EmploymentFullTime),
		PartTimeData: FilterByEmploymentType(enriched, domain.EmploymentPartTime),
	}, nil
}
