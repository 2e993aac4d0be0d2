// Package productivity implements the employee productivity rules.
//
// A Calculator turns raw timesheet rows into enriched rows and rolls the
// enriched rows up into summary statistics.
//
// # Rules
//
//   - Standard hours depend on employment type (Full-Time 200, Part-Time 100).
//   - Each leave day deducts HoursPerLeaveDay (8) from the standard hours.
//   - Expected hours never drop below 1.
//   - Productivity percentage is actual / expected * 100, rounded to
//     Policy.Precision places from the unrounded actual hours.
//   - A record is Productive when the rounded percentage reaches Policy.Threshold.
//
// All constants live in Policy, which is copied into the Calculator on
// construction. The Calculator holds no mutable state and is safe for
// concurrent use.
//
// # Usage
//
//	calc, err := productivity.NewCalculator(productivity.DefaultPolicy(), logger)
//	if err != nil {
//		return err
//	}
//	enriched, err := calc.Calculate(ctx, records)
//	if err != nil {
//		return err // *ValidationError lists every offending row
//	}
//	summary := calc.Summarize(ctx, enriched)
package productivity
