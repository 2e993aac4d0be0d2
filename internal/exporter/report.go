package exporter

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"workpulse/pkg/contracts/domain"
)

// DefaultReportTitle heads PDF reports unless a title is supplied
const DefaultReportTitle = "Employee Productivity Report"

// Column widths of the report table, in characters
const (
	nameWidth       = 20
	departmentWidth = 15
	typeWidth       = 10
	statusWidth     = 15
)

// ReportRow is one table line, already formatted for display
type ReportRow struct {
	EmployeeID   string
	Name         string
	Department   string
	Type         string
	Hours        string
	Productivity string
	Status       string
	Productive   bool
}

// ReportData feeds the report template
type ReportData struct {
	Title               string
	GeneratedAt         string
	TotalEmployees      int
	ProductiveCount     int
	NotProductiveCount  int
	AverageProductivity string
	Rows                []ReportRow
}

// NewReportData formats a summary and its records for the report template
func NewReportData(title string, now time.Time, summary domain.SummaryStats, records []domain.EnrichedRecord) ReportData {
	if title == "" {
		title = DefaultReportTitle
	}

	avg := "n/a"
	if summary.AverageProductivity != nil {
		avg = fmt.Sprintf("%.2f%%", *summary.AverageProductivity)
	}

	rows := make([]ReportRow, len(records))
	for i, rec := range records {
		rows[i] = ReportRow{
			EmployeeID:   rec.EmployeeID,
			Name:         truncate(rec.Name, nameWidth),
			Department:   truncate(rec.Department, departmentWidth),
			Type:         truncate(rec.EmploymentType.String(), typeWidth),
			Hours:        fmt.Sprintf("%.1f", rec.ActualHours),
			Productivity: fmt.Sprintf("%.1f%%", rec.ProductivityPercentage),
			Status:       truncate(string(rec.ProductivityStatus), statusWidth),
			Productive:   rec.IsProductive(),
		}
	}

	return ReportData{
		Title:               title,
		GeneratedAt:         now.Format("2006-01-02 15:04:05"),
		TotalEmployees:      summary.TotalEmployees,
		ProductiveCount:     summary.ProductiveCount,
		NotProductiveCount:  summary.NotProductiveCount,
		AverageProductivity: avg,
		Rows:                rows,
	}
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; margin: 18mm 12mm; }
  body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #222; }
  h1 { text-align: center; font-size: 20pt; margin-bottom: 18px; }
  .summary { margin-bottom: 18px; line-height: 1.6; }
  table { width: 100%; border-collapse: collapse; }
  th { background: #808080; color: #f5f5f5; font-weight: bold; padding: 6px 4px 10px; }
  td { background: #f5f5dc; padding: 4px; }
  th, td { border: 1px solid #000; text-align: center; }
  tr { page-break-inside: avoid; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="summary">
  <b>Report Generated:</b> {{.GeneratedAt}}<br>
  <b>Total Employees:</b> {{.TotalEmployees}}<br>
  <b>Productive:</b> {{.ProductiveCount}}<br>
  <b>Not Productive:</b> {{.NotProductiveCount}}<br>
  <b>Average Productivity:</b> {{.AverageProductivity}}
</div>
<table>
  <thead>
    <tr><th>ID</th><th>Name</th><th>Department</th><th>Type</th><th>Hours</th><th>Productivity %</th><th>Status</th></tr>
  </thead>
  <tbody>
  {{- range .Rows}}
    <tr class="{{if .Productive}}productive{{else}}not-productive{{end}}"><td>{{.EmployeeID}}</td><td>{{.Name}}</td><td>{{.Department}}</td><td>{{.Type}}</td><td>{{.Hours}}</td><td>{{.Productivity}}</td><td>{{.Status}}</td></tr>
  {{- end}}
  </tbody>
</table>
</body>
</html>
`))

// RenderReportHTML executes the report template
func RenderReportHTML(data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
