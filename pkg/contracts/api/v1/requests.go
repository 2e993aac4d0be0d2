// Package api contains the request and response contracts of the WorkPulse HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"workpulse/pkg/contracts"
	"workpulse/pkg/contracts/domain"
)

// ExportRequest carries records back to the server for export.
// Records are recalculated server-side, so only the input columns matter.
type ExportRequest struct {
	Data  []domain.EmployeeRecord `json:"data" validate:"required,min=1,dive"`
	Title string                  `json:"title,omitempty" validate:"omitempty,max=120"`
}

// SheetAnalyzeRequest points the analyzer at a Google Sheets range
type SheetAnalyzeRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" validate:"required,min=10,max=200"`
	Range         string `json:"range" validate:"omitempty,max=100"`
}

// AnalyzeResponse is the body returned by the analysis endpoints
type AnalyzeResponse struct {
	domain.AnalysisResult
	SourceName string `json:"source_name,omitempty"`
	AnalysisID string `json:"analysis_id"`
}

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// VersionResponse is the body of GET /api/version
type VersionResponse struct {
	contracts.BuildInfo
	StartTime     string  `json:"start_time"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
}
