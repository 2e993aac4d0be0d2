// Package sample generates synthetic employee rosters for demos and tests.
//
// Roughly 70% of generated employees land in the productive band (90% to
// 105% of standard hours) and the rest between 60% and 89%, before leave is
// taken into account. Leave reduces actual hours by 80% to 100% of the
// leave-hour deduction, so some employees with leave cross the threshold.
package sample

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"workpulse/internal/productivity"
	"workpulse/pkg/contracts/domain"
)

// SheetName is the worksheet sample workbooks are written to
const SheetName = "Employee Data"

// Departments are drawn uniformly for each generated employee
var Departments = []string{
	"Engineering",
	"Sales",
	"Marketing",
	"HR",
	"Finance",
	"Operations",
	"IT",
	"Customer Service",
}

const (
	productiveShare = 0.7
	maxLeaveDays    = 5
)

// Generator produces rosters from an injected random source
type Generator struct {
	rng    *rand.Rand
	policy productivity.Policy
}

// NewGenerator creates a generator. The same rng state yields the same roster.
func NewGenerator(rng *rand.Rand, policy productivity.Policy) *Generator {
	return &Generator{rng: rng, policy: policy}
}

// NewSeededGenerator creates a reproducible generator from a single seed
func NewSeededGenerator(seed uint64, policy productivity.Policy) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), policy)
}

// Generate returns count employees with IDs EMP0001 onwards.
// A Generator is not safe for concurrent use.
func (g *Generator) Generate(count int) []domain.EmployeeRecord {
	if count < 0 {
		count = 0
	}

	records := make([]domain.EmployeeRecord, 0, count)
	for i := 1; i <= count; i++ {
		empType := domain.EmploymentTypes[g.rng.IntN(len(domain.EmploymentTypes))]
		standard, _ := g.policy.StandardHours(empType) // empType comes from EmploymentTypes
		leave := g.rng.IntN(maxLeaveDays + 1)

		var hours int
		if g.rng.Float64() < productiveShare {
			hours = g.intBetween(int(standard*0.90), int(standard*1.05))
		} else {
			hours = g.intBetween(int(standard*0.60), int(standard*0.89))
		}

		leaveFactor := 0.8 + 0.2*g.rng.Float64()
		actual := float64(hours) - float64(leave)*g.policy.HoursPerLeaveDay*leaveFactor
		if actual < 0 {
			actual = 0
		}

		records = append(records, domain.EmployeeRecord{
			EmployeeID:     fmt.Sprintf("EMP%04d", i),
			Name:           fmt.Sprintf("Employee %d", i),
			Department:     Departments[g.rng.IntN(len(Departments))],
			EmploymentType: empType,
			ActualHours:    decimal.NewFromFloat(actual).Round(2).InexactFloat64(),
			LeaveDays:      leave,
		})
	}
	return records
}

// intBetween draws uniformly from [lo, hi]
func (g *Generator) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

// Filename names a sample download: sample_employee_data_100.xlsx
func Filename(count int, ext string) string {
	return fmt.Sprintf("sample_employee_data_%d.%s", count, ext)
}
