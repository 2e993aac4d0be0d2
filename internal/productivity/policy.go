package productivity

import (
	"fmt"

	"workpulse/pkg/contracts/domain"
)

const (
	// DefaultFullTimeStandardHours is the period baseline for full-time staff
	DefaultFullTimeStandardHours = 200.0
	// DefaultPartTimeStandardHours is the period baseline for part-time staff
	DefaultPartTimeStandardHours = 100.0
	// DefaultHoursPerLeaveDay converts leave days into deducted hours
	DefaultHoursPerLeaveDay = 8.0
	// DefaultThreshold is the minimum percentage classified as Productive
	DefaultThreshold = 90.0
	// DefaultPrecision is the number of decimal places kept when rounding
	DefaultPrecision = 2

	// MinExpectedHours is the floor applied to expected hours
	MinExpectedHours = 1.0
	// MaxPrecision bounds Policy.Precision
	MaxPrecision = 6
)

// Policy holds the constants of the productivity rules
type Policy struct {
	FullTimeStandardHours float64 `json:"fulltime_standard_hours" yaml:"fulltime_standard_hours"`
	PartTimeStandardHours float64 `json:"parttime_standard_hours" yaml:"parttime_standard_hours"`
	HoursPerLeaveDay      float64 `json:"hours_per_leave_day" yaml:"hours_per_leave_day"`
	Threshold             float64 `json:"threshold" yaml:"threshold"`
	Precision             int     `json:"precision" yaml:"precision"`
}

// DefaultPolicy returns the standard policy: 200/100 standard hours,
// 8 hours per leave day, a 90% threshold and 2 decimal places.
func DefaultPolicy() Policy {
	return Policy{
		FullTimeStandardHours: DefaultFullTimeStandardHours,
		PartTimeStandardHours: DefaultPartTimeStandardHours,
		HoursPerLeaveDay:      DefaultHoursPerLeaveDay,
		Threshold:             DefaultThreshold,
		Precision:             DefaultPrecision,
	}
}

// Validate checks the policy for values that would make the rules meaningless
func (p Policy) Validate() error {
	if p.FullTimeStandardHours <= 0 {
		return &PolicyError{Field: "fulltime_standard_hours", Message: "must be positive", Value: p.FullTimeStandardHours}
	}
	if p.PartTimeStandardHours <= 0 {
		return &PolicyError{Field: "parttime_standard_hours", Message: "must be positive", Value: p.PartTimeStandardHours}
	}
	if p.HoursPerLeaveDay < 0 {
		return &PolicyError{Field: "hours_per_leave_day", Message: "must not be negative", Value: p.HoursPerLeaveDay}
	}
	if p.Threshold < 0 {
		return &PolicyError{Field: "threshold", Message: "must not be negative", Value: p.Threshold}
	}
	if p.Precision < 0 || p.Precision > MaxPrecision {
		return &PolicyError{Field: "precision", Message: fmt.Sprintf("must be between 0 and %d", MaxPrecision), Value: p.Precision}
	}
	return nil
}

// StandardHours returns the baseline for an employment type
func (p Policy) StandardHours(t domain.EmploymentType) (float64, error) {
	switch t {
	case domain.EmploymentFullTime:
		return p.FullTimeStandardHours, nil
	case domain.EmploymentPartTime:
		return p.PartTimeStandardHours, nil
	default:
		return 0, fmt.Errorf("no standard hours defined for employment type %q", string(t))
	}
}

// PolicyError reports an invalid policy field
type PolicyError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *PolicyError) Error() string {
	return fmt.Sprintf("invalid policy %s: %s (got %v)", e.Field, e.Message, e.Value)
}
