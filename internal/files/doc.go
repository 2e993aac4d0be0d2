// Package files writes generated reports to an output directory.
//
// Manager keeps every relative name under its root and hands out unique names
// when several inputs would produce the same report. Writes go through a
// temporary file, so a failed export leaves no partial report, and an
// existing file is never overwritten.
//
// Example usage:
//
//	manager := files.NewManager("reports", logger)
//	path, err := manager.WriteUnique(files.ReportName("march.xlsx", "pdf"), body)
package files
