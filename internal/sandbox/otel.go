package sandbox

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("ctxengine.sandbox")
	meter  = otel.Meter("ctxengine.sandbox")
)

var (
	runLatency   metric.Float64Histogram
	runTotal     metric.Int64Counter
	runBlocked   metric.Int64Counter
	runTruncated metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		runLatency, err = meter.Float64Histogram(
			"sandbox_run_duration_seconds",
			metric.WithDescription("Duration of sandbox snippet runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		runTotal, err = meter.Int64Counter(
			"sandbox_run_total",
			metric.WithDescription("Total number of sandbox runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		runBlocked, err = meter.Int64Counter(
			"sandbox_run_blocked_total",
			metric.WithDescription("Runs rejected by the static gate"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		runTruncated, err = meter.Int64Counter(
			"sandbox_run_truncated_total",
			metric.WithDescription("Runs whose output was truncated to maxOutputTokens"),
		)
	})
	return metricsErr
}

func recordRun(ctx context.Context, duration time.Duration, success bool) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
}

func recordBlocked(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	runBlocked.Add(ctx, 1)
}

func recordTruncated(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	runTruncated.Add(ctx, 1)
}

func startRunSpan(ctx context.Context, workingDir string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Sandbox.Run",
		trace.WithAttributes(attribute.String("sandbox.working_dir", workingDir)),
	)
}
