package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EmploymentType is the closed set of employment classifications
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "Full-Time"
	EmploymentPartTime EmploymentType = "Part-Time"
)

// EmploymentTypes lists the accepted employment types in display order
var EmploymentTypes = []EmploymentType{EmploymentFullTime, EmploymentPartTime}

// Valid reports whether t is one of the known employment types
func (t EmploymentType) Valid() bool {
	return t == EmploymentFullTime || t == EmploymentPartTime
}

// String returns the canonical label
func (t EmploymentType) String() string {
	return string(t)
}

// UnmarshalJSON normalises known spellings. Unknown values are kept as-is so
// that validation can report them against the offending row.
func (t *EmploymentType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("employment_type must be a string: %w", err)
	}
	if parsed, err := ParseEmploymentType(raw); err == nil {
		*t = parsed
		return nil
	}
	*t = EmploymentType(raw)
	return nil
}

// ParseEmploymentType maps a raw label onto the closed enum.
// Case, spaces, underscores and hyphens are ignored; anything else is rejected.
func ParseEmploymentType(raw string) (EmploymentType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)

	switch key {
	case "fulltime":
		return EmploymentFullTime, nil
	case "parttime":
		return EmploymentPartTime, nil
	default:
		return "", fmt.Errorf("unknown employment type %q (expected %s or %s)", raw, EmploymentFullTime, EmploymentPartTime)
	}
}

// ProductivityStatus is the binary classification of an enriched record
type ProductivityStatus string

const (
	StatusProductive    ProductivityStatus = "Productive"
	StatusNotProductive ProductivityStatus = "Not Productive"
)

// EmployeeRecord is one row of timesheet input
type EmployeeRecord struct {
	EmployeeID     string         `json:"employee_id" validate:"required"`
	Name           string         `json:"name"`
	Department     string         `json:"department"`
	EmploymentType EmploymentType `json:"employment_type" validate:"required,employment_type"`
	ActualHours    float64        `json:"actual_hours" validate:"finite,gte=0"`
	LeaveDays      int            `json:"leave_days" validate:"gte=0"`

	// Line is the source file line the record was read from; 0 when the
	// record did not come from a file
	Line int `json:"-"`
}

// EnrichedRecord is an EmployeeRecord plus the derived productivity columns
type EnrichedRecord struct {
	EmployeeRecord
	StandardHours          float64            `json:"standard_hours"`
	LeaveHoursDeduction    float64            `json:"leave_hours_deduction"`
	ExpectedHours          float64            `json:"expected_hours"`
	ProductivityPercentage float64            `json:"productivity_percentage"`
	ProductivityStatus     ProductivityStatus `json:"productivity_status"`
}

// IsProductive reports whether the record met the productivity threshold
func (r EnrichedRecord) IsProductive() bool {
	return r.ProductivityStatus == StatusProductive
}

// SegmentStats summarises one employment-type segment
type SegmentStats struct {
	Count               int     `json:"count"`
	Productive          int     `json:"productive"`
	NotProductive       int     `json:"not_productive"`
	AverageProductivity float64 `json:"average_productivity"`
	AverageHours        float64 `json:"average_hours"`
}

// UnassignedDepartment keys department_stats for records with a blank department
const UnassignedDepartment = "Unassigned"

// DepartmentStats summarises one department
type DepartmentStats struct {
	AverageProductivity float64 `json:"average_productivity"`
	EmployeeCount       int     `json:"employee_count"`
}

// SummaryStats is the aggregate view over a full enriched set.
// AverageProductivity is nil when there are no records.
type SummaryStats struct {
	TotalEmployees      int                        `json:"total_employees"`
	ProductiveCount     int                        `json:"productive_count"`
	NotProductiveCount  int                        `json:"not_productive_count"`
	AverageProductivity *float64                   `json:"average_productivity"`
	FullTimeStats       *SegmentStats              `json:"fulltime_stats,omitempty"`
	PartTimeStats       *SegmentStats              `json:"parttime_stats,omitempty"`
	DepartmentStats     map[string]DepartmentStats `json:"department_stats"`
}

// AverageOrZero returns the overall average, treating an empty set as zero
func (s SummaryStats) AverageOrZero() float64 {
	if s.AverageProductivity == nil {
		return 0
	}
	return *s.AverageProductivity
}

// AnalysisResult is the full response of an analysis run
type AnalysisResult struct {
	Summary      SummaryStats     `json:"summary"`
	Data         []EnrichedRecord `json:"data"`
	FullTimeData []EnrichedRecord `json:"fulltime_data"`
	PartTimeData []EnrichedRecord `json:"parttime_data"`
}
