// Package services implements the business logic layer of WorkPulse.
// It sits between the HTTP handlers and the CLI on one side and the
// parsing, calculation and export packages on the other, so both front
// ends share the same rules.
//
// # Service Layer Responsibilities
//
//	- Validating inputs (upload names and sizes, export and sheet requests)
//	- Reading rosters from files, uploads and Google Sheets
//	- Running the productivity analysis
//	- Rendering downloads (XLSX, CSV, PDF, JSON)
//	- Generating sample rosters
//	- Tracing and recording business metrics for each of the above
//
// # Error Handling
//
// Domain errors are wrapped into typed application errors from
// internal/errors before they leave the package:
//
//	- invalid rows and missing columns become validation errors
//	- unreadable cells become parsing errors
//	- an unconfigured Sheets source or PDF renderer becomes an
//	  unavailable error
//
// Handlers pass these to ErrorHandler.HandleError, which renders them as
// RFC 7807 problems with the row details as extensions.
//
// # Available Services
//
//	- ProductivityService: analysis, export and sample generation
//	- HealthService: liveness, readiness and version information
package services
