// Package exporter renders analysed rosters into downloadable reports.
//
// Four outputs are supported:
//
//   - Workbook: a multi-sheet XLSX (All Employees, one sheet per non-empty
//     segment, and a Summary sheet) built with excelize
//   - CSVWriter: the enriched table as CSV, optionally with a UTF-8 BOM so
//     Excel detects the encoding
//   - ReportHTML: an HTML summary plus a truncated table
//   - PDFRenderer: the HTML report printed to PDF by headless Chrome
//
// Example usage:
//
//	wb := exporter.NewWorkbook(logger)
//	err := wb.Write(w, records, summary)
//
//	html, err := exporter.RenderReportHTML(exporter.NewReportData(title, time.Now(), summary, records))
//	pdf, err := exporter.NewPDFRenderer(chromePath, 30*time.Second, logger).Render(ctx, html)
package exporter
