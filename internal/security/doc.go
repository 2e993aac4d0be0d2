// Package security neutralises untrusted text before it leaves the service.
//
// Roster names, departments and IDs come straight from uploaded files. When
// they are written back out as CSV, a cell starting with a formula trigger
// would be evaluated by the spreadsheet that opens the report. SanitizeCell
// strips control characters and escapes those triggers.
package security
