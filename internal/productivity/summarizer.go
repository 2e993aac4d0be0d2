package productivity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"workpulse/pkg/contracts/domain"
)

// Summarize rolls enriched records up into overall, per-employment-type and
// per-department statistics. The input slice is not modified.
func (c *Calculator) Summarize(ctx context.Context, records []domain.EnrichedRecord) domain.SummaryStats {
	productive := lo.CountBy(records, domain.EnrichedRecord.IsProductive)

	summary := domain.SummaryStats{
		TotalEmployees:     len(records),
		ProductiveCount:    productive,
		NotProductiveCount: len(records) - productive,
		DepartmentStats:    make(map[string]domain.DepartmentStats),
	}

	if len(records) > 0 {
		avg := mean(percentages(records), c.policy.Precision)
		summary.AverageProductivity = &avg
	}

	summary.FullTimeStats = c.segmentStats(FilterByEmploymentType(records, domain.EmploymentFullTime))
	summary.PartTimeStats = c.segmentStats(FilterByEmploymentType(records, domain.EmploymentPartTime))

	for dept, members := range lo.GroupBy(records, departmentKey) {
		summary.DepartmentStats[dept] = domain.DepartmentStats{
			AverageProductivity: mean(percentages(members), c.policy.Precision),
			EmployeeCount:       len(members),
		}
	}

	c.logger.DebugContext(ctx, "summarized records",
		slog.Int("total", summary.TotalEmployees),
		slog.Int("productive", summary.ProductiveCount),
		slog.Int("departments", len(summary.DepartmentStats)))

	return summary
}

// segmentStats returns nil for an empty segment
func (c *Calculator) segmentStats(records []domain.EnrichedRecord) *domain.SegmentStats {
	if len(records) == 0 {
		return nil
	}

	productive := lo.CountBy(records, domain.EnrichedRecord.IsProductive)
	hours := lo.Map(records, func(r domain.EnrichedRecord, _ int) float64 { return r.ActualHours })

	return &domain.SegmentStats{
		Count:               len(records),
		Productive:          productive,
		NotProductive:       len(records) - productive,
		AverageProductivity: mean(percentages(records), c.policy.Precision),
		AverageHours:        mean(hours, c.policy.Precision),
	}
}

func departmentKey(r domain.EnrichedRecord) string {
	if dept := strings.TrimSpace(r.Department); dept != "" {
		return dept
	}
	return domain.UnassignedDepartment
}

func percentages(records []domain.EnrichedRecord) []float64 {
	return lo.Map(records, func(r domain.EnrichedRecord, _ int) float64 { return r.ProductivityPercentage })
}
