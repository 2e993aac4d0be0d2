package infrastructure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics are the instruments behind /metrics. Every Record helper
// accepts a nil *BusinessMetrics so callers never branch on it.
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	AnalysesTotal      metric.Int64Counter
	AnalysisDuration   metric.Float64Histogram
	RecordsAnalyzed    metric.Int64Counter
	ValidationFailures metric.Int64Counter

	ExportsTotal     metric.Int64Counter
	ExportDuration   metric.Float64Histogram
	SamplesGenerated metric.Int64Counter
}

// instrumentSet collects the first creation error instead of checking
// after every instrument
type instrumentSet struct {
	meter metric.Meter
	errs  []error
}

func (s *instrumentSet) counter(name, desc string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(desc))
	s.errs = append(s.errs, err)
	return c
}

func (s *instrumentSet) seconds(name, desc string) metric.Float64Histogram {
	h, err := s.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	s.errs = append(s.errs, err)
	return h
}

func (s *instrumentSet) gauge(name, desc string) metric.Int64UpDownCounter {
	g, err := s.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	s.errs = append(s.errs, err)
	return g
}

// CreateBusinessMetrics registers every instrument on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	s := &instrumentSet{meter: meter}
	m := &BusinessMetrics{
		HTTPRequestsTotal:   s.counter("http_requests_total", "HTTP requests served"),
		HTTPRequestDuration: s.seconds("http_request_duration_seconds", "HTTP request latency"),
		HTTPActiveRequests:  s.gauge("http_active_requests", "HTTP requests in flight"),

		AnalysesTotal:      s.counter("analyses_total", "Roster analyses run"),
		AnalysisDuration:   s.seconds("analysis_duration_seconds", "Roster analysis latency"),
		RecordsAnalyzed:    s.counter("records_analyzed_total", "Employee records analysed"),
		ValidationFailures: s.counter("validation_failures_total", "Inputs rejected before analysis"),

		ExportsTotal:     s.counter("exports_total", "Reports exported"),
		ExportDuration:   s.seconds("export_duration_seconds", "Report export latency"),
		SamplesGenerated: s.counter("samples_generated_total", "Sample employee rows generated"),
	}
	if err := errors.Join(s.errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "failure")
	}
	return attribute.String("outcome", "success")
}

// RecordAnalysis counts one analysis run. Records are only counted on success.
func RecordAnalysis(ctx context.Context, m *BusinessMetrics, source string, records int, took time.Duration, err error) {
	if m == nil {
		return
	}
	src := attribute.String("source", source)
	attrs := metric.WithAttributes(src, outcome(err))
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, took.Seconds(), attrs)
	if err == nil {
		m.RecordsAnalyzed.Add(ctx, int64(records), metric.WithAttributes(src))
	}
}

func RecordValidationFailure(ctx context.Context, m *BusinessMetrics, reason string) {
	if m == nil {
		return
	}
	m.ValidationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func RecordExport(ctx context.Context, m *BusinessMetrics, format string, took time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("format", format), outcome(err))
	m.ExportsTotal.Add(ctx, 1, attrs)
	m.ExportDuration.Record(ctx, took.Seconds(), attrs)
}

func RecordSampleGenerated(ctx context.Context, m *BusinessMetrics, rows int) {
	if m == nil {
		return
	}
	m.SamplesGenerated.Add(ctx, int64(rows))
}
