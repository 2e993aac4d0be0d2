package productivity

import (
	"fmt"
	"strings"
)

// RowError describes why a single input row was rejected
type RowError struct {
	Row        int    `json:"row"`
	EmployeeID string `json:"employee_id,omitempty"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// String formats the row error for logs and messages
func (e RowError) String() string {
	if e.EmployeeID != "" {
		return fmt.Sprintf("row %d (%s): %s %s", e.Row, e.EmployeeID, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Message)
}

// ValidationError is returned when any row of a batch is invalid.
// The batch is rejected as a whole.
type ValidationError struct {
	Rows []RowError `json:"rows"`
}

// maxListedRows caps how many rows Error() spells out
const maxListedRows = 5

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Rows) == 0 {
		return "invalid records"
	}

	parts := make([]string, 0, maxListedRows)
	for i, row := range e.Rows {
		if i == maxListedRows {
			break
		}
		parts = append(parts, row.String())
	}

	msg := fmt.Sprintf("%d invalid record(s): %s", len(e.Rows), strings.Join(parts, "; "))
	if len(e.Rows) > maxListedRows {
		msg += fmt.Sprintf("; and %d more", len(e.Rows)-maxListedRows)
	}
	return msg
}
