// Package http implements the HTTP handlers of the WorkPulse API.
// Handlers stay thin: they decode requests, call the service layer and
// render responses. Every failure goes through apierrors.ErrorHandler so
// clients always receive RFC 7807 problem documents.
//
// # Routes
//
//	POST /api/analyze           multipart upload (field "file")
//	POST /api/analyze/sheet     {"spreadsheet_id", "range"}
//	GET  /api/generate-sample   ?count=N&format=xlsx|csv
//	POST /api/export-excel      {"data": [...]}
//	POST /api/export-csv        {"data": [...]}
//	POST /api/export-pdf        {"data": [...], "title"}
//	GET  /api/policy
//	GET  /health, /api/health, /api/health/ready, /api/health/live
//	GET  /api/version
//	GET  /metrics
//
// Downloads are served with a Content-Disposition attachment header.
package http
