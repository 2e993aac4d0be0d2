package services

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"workpulse/internal/infrastructure"
	"workpulse/pkg/contracts"
	api "workpulse/pkg/contracts/api/v1"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
	StatusAlive     = "alive"
	CheckOK         = "ok"
	CheckDisabled   = "disabled"
	checkFailPrefix = "unavailable: "
)

// CheckFunc probes one dependency. A nil error means the dependency is usable.
type CheckFunc func(ctx context.Context) error

type healthCheck struct {
	fn       CheckFunc
	required bool
}

// HealthService provides health check functionality
type HealthService struct {
	build     contracts.BuildInfo
	startTime time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	checks map[string]healthCheck
}

// NewHealthService creates a health service for the given build
func NewHealthService(build contracts.BuildInfo, logger *slog.Logger) *HealthService {
	hs := &HealthService{
		build:     build,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
		checks:    make(map[string]healthCheck),
	}

	hs.logger.Info("HealthService initialized",
		slog.String("version", build.Version),
		slog.String("build_time", build.BuildTime))

	return hs
}

// AddCheck registers a dependency probe. Failing required checks mark the
// service degraded and not ready; optional ones are only reported.
func (hs *HealthService) AddCheck(name string, fn CheckFunc, required bool) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.checks[name] = healthCheck{fn: fn, required: required}
}

// AddDisabled reports a dependency that is switched off by configuration
func (hs *HealthService) AddDisabled(name string) {
	hs.AddCheck(name, nil, false)
}

// HealthCheck runs every registered check
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	results, requiredOK := hs.runChecks(ctx)

	status := StatusHealthy
	if !requiredOK {
		status = StatusDegraded
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status),
		slog.Int("checks", len(results)))

	return api.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   hs.build.Version,
		Checks:    results,
	}
}

// ReadinessCheck reports whether every required dependency is usable
func (hs *HealthService) ReadinessCheck(ctx context.Context) api.HealthResponse {
	results, requiredOK := hs.runChecks(ctx)

	status := StatusReady
	if !requiredOK {
		status = StatusNotReady
	}

	return api.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   hs.build.Version,
		Checks:    results,
	}
}

// LivenessCheck only proves the process is serving requests
func (hs *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    StatusAlive,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   hs.build.Version,
	}
}

// Version reports build metadata and process uptime
func (hs *HealthService) Version() api.VersionResponse {
	return api.VersionResponse{
		BuildInfo:     hs.build,
		StartTime:     hs.startTime.UTC().Format(time.RFC3339),
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
	}
}

func (hs *HealthService) runChecks(ctx context.Context) (map[string]string, bool) {
	hs.mu.RLock()
	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	checks := make(map[string]healthCheck, len(hs.checks))
	for k, v := range hs.checks {
		checks[k] = v
	}
	hs.mu.RUnlock()
	sort.Strings(names)

	results := make(map[string]string, len(names))
	requiredOK := true
	for _, name := range names {
		check := checks[name]
		if check.fn == nil {
			results[name] = CheckDisabled
			continue
		}
		if err := check.fn(ctx); err != nil {
			results[name] = checkFailPrefix + err.Error()
			if check.required {
				requiredOK = false
			}
			hs.logger.WarnContext(ctx, "health check failed",
				slog.String("check", name),
				slog.Bool("required", check.required),
				slog.String("error", err.Error()))
			continue
		}
		results[name] = CheckOK
	}
	return results, requiredOK
}
