// Package app provides application initialization and lifecycle management
// for the WorkPulse API server.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Wire the productivity service with its optional Sheets and PDF backends
//	4. Register health checks
//	5. Build the chi router and middleware chain
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry.
package app
