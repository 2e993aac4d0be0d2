// Package config loads WorkPulse configuration.
//
// # Sources
//
// Values are resolved in order of increasing precedence:
//
//	1. Default() values
//	2. A YAML file (WORKPULSE_CONFIG_FILE, or workpulse.yaml / config.yaml / configs/config.yaml)
//	3. A .env file in the working directory (never overrides variables already set)
//	4. Environment variables with the WORKPULSE_ prefix
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	WORKPULSE_SERVER_PORT=9000
//	WORKPULSE_LOGGING_LEVEL=debug
//	WORKPULSE_POLICY_THRESHOLD=85
//	WORKPULSE_UPLOAD_ALLOWED_EXTENSIONS=.csv,.xlsx
//	WORKPULSE_SHEETS_CREDENTIALS_FILE=/etc/workpulse/sa.json
//
// # Validation
//
// Load rejects out-of-range ports, non-positive timeouts, unknown log levels
// or exporters, and any productivity policy that Policy.Validate refuses.
package config
