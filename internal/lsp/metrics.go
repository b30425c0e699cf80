package lsp

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("lodestar.lsp")

var (
	requestLatency  metric.Float64Histogram
	requestTotal    metric.Int64Counter
	requestTimeouts metric.Int64Counter
	definitionTotal metric.Int64Counter
	workerPanics    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		requestLatency, err = meter.Float64Histogram(
			"lsp_request_duration_seconds",
			metric.WithDescription("Time from decoding a request to sending its response"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		requestTotal, err = meter.Int64Counter(
			"lsp_request_total",
			metric.WithDescription("Requests answered, by method and outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		requestTimeouts, err = meter.Int64Counter(
			"lsp_request_timeouts_total",
			metric.WithDescription("Work items abandoned at the request deadline"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		definitionTotal, err = meter.Int64Counter(
			"lsp_definition_source_total",
			metric.WithDescription("Definition lookups by the source that answered"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		workerPanics, err = meter.Int64Counter(
			"lsp_worker_panics_total",
			metric.WithDescription("Work items that panicked on a pool worker"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRequest(ctx context.Context, method, outcome string, d time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	requestLatency.Record(ctx, d.Seconds(), attrs)
	requestTotal.Add(ctx, 1, attrs)
}

func recordTimeout(ctx context.Context, method string) {
	if err := initMetrics(); err != nil {
		return
	}
	requestTimeouts.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

func recordDefinitionSource(ctx context.Context, source string) {
	if err := initMetrics(); err != nil {
		return
	}
	definitionTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordWorkerPanic counts a recovered panic. It matches workpool.Options
// OnPanic.
func RecordWorkerPanic(worker string, _ any) {
	if err := initMetrics(); err != nil {
		return
	}
	workerPanics.Add(context.Background(), 1, metric.WithAttributes(attribute.String("worker", worker)))
}
