// Package dataprocessing turns roster files into domain.EmployeeRecord values.
//
// # Sources
//
// Three file formats are read, selected by extension:
//
//   - .csv through encoding/csv
//   - .xlsx through excelize (first worksheet)
//   - .xls through extrame/xls (first worksheet)
//
// A Google Sheets range can be read through SheetsSource and handed to
// Parser.ParseRows, which is what every format ends up calling.
//
// # Columns
//
// The first non-blank row is the header. Header cells are matched case- and
// separator-insensitively, so "Employee ID", "employee-id" and "Employee_ID"
// all name the same column. All six columns in RequiredColumns must be
// present, otherwise a *ColumnError reports them as "Missing columns: ...".
// Extra columns are ignored.
//
// # Rows
//
// Blank rows are skipped. Cells that cannot be converted (non-numeric hours,
// fractional leave days) are collected into a *ParseError that lists every
// offending line; no records are returned in that case. Employment types are
// normalised when recognisable and otherwise passed through unchanged, so
// the productivity calculator reports them along with its other row checks.
package dataprocessing
