package dataprocessing

import (
	"strings"
	"unicode"
)

// Canonical roster column names, as they appear in generated files
const (
	ColumnEmployeeID     = "Employee_ID"
	ColumnName           = "Name"
	ColumnDepartment     = "Department"
	ColumnEmploymentType = "Employment_Type"
	ColumnActualHours    = "Actual_Hours"
	ColumnLeaveDays      = "Leave_Days"
)

// RequiredColumns lists the roster columns in their canonical order
var RequiredColumns = []string{
	ColumnEmployeeID,
	ColumnName,
	ColumnDepartment,
	ColumnEmploymentType,
	ColumnActualHours,
	ColumnLeaveDays,
}

// normalizeHeader folds case and drops separators: "Employee ID",
// "employee-id" and "Employee_ID" all become "employeeid".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mapColumns resolves each required column to its index in header. The first
// matching header cell wins.
func mapColumns(header []string) (map[string]int, error) {
	byKey := make(map[string]int, len(header))
	for i, cell := range header {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			byKey[key] = i
		}
	}

	index := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		if i, ok := byKey[normalizeHeader(col)]; ok {
			index[col] = i
		} else {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, &ColumnError{Missing: missing}
	}
	return index, nil
}
