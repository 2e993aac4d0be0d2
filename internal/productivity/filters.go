package productivity

import (
	"github.com/samber/lo"

	"workpulse/pkg/contracts/domain"
)

// Segment is a named subset of enriched records, used for multi-sheet exports
type Segment struct {
	Name    string
	Records []domain.EnrichedRecord
}

// Sheet names for the standard segments
const (
	SegmentAll           = "All Employees"
	SegmentFullTime      = "Full-Time"
	SegmentPartTime      = "Part-Time"
	SegmentProductive    = "Productive"
	SegmentNotProductive = "Not Productive"
)

// FilterByEmploymentType returns the records of one employment type, in input order
func FilterByEmploymentType(records []domain.EnrichedRecord, t domain.EmploymentType) []domain.EnrichedRecord {
	return lo.Filter(records, func(r domain.EnrichedRecord, _ int) bool {
		return r.EmploymentType == t
	})
}

// FilterByStatus returns the records with the given status, in input order
func FilterByStatus(records []domain.EnrichedRecord, status domain.ProductivityStatus) []domain.EnrichedRecord {
	return lo.Filter(records, func(r domain.EnrichedRecord, _ int) bool {
		return r.ProductivityStatus == status
	})
}

// Segments returns the four standard segments in export order.
// Empty segments are included; callers decide whether to skip them.
func Segments(records []domain.EnrichedRecord) []Segment {
	return []Segment{
		{Name: SegmentFullTime, Records: FilterByEmploymentType(records, domain.EmploymentFullTime)},
		{Name: SegmentPartTime, Records: FilterByEmploymentType(records, domain.EmploymentPartTime)},
		{Name: SegmentProductive, Records: FilterByStatus(records, domain.StatusProductive)},
		{Name: SegmentNotProductive, Records: FilterByStatus(records, domain.StatusNotProductive)},
	}
}
