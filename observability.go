package main

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "quietblog/store"

const slowOperation = 200 * time.Millisecond

// observer instruments store operations. It uses the global OpenTelemetry
// providers, which are no-ops until an SDK is registered.
type observer struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	ops      metric.Int64Counter
	errs     metric.Int64Counter
	duration metric.Float64Histogram
}

func newObserver(logger *slog.Logger) *observer {
	meter := otel.Meter(instrumentationName)

	ops, _ := meter.Int64Counter("blog.store.operations",
		metric.WithDescription("Store operations executed"),
		metric.WithUnit("{operation}"),
	)
	errs, _ := meter.Int64Counter("blog.store.errors",
		metric.WithDescription("Store operations that returned an error"),
		metric.WithUnit("{error}"),
	)
	duration, _ := meter.Float64Histogram("blog.store.duration",
		metric.WithDescription("Store operation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)

	return &observer{
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		ops:      ops,
		errs:     errs,
		duration: duration,
	}
}

// start opens a span for op. The returned func must be called with the
// operation's final error.
func (o *observer) start(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.operation", op),
		),
	)

	return ctx, func(err error) {
		defer span.End()
		elapsed := time.Since(start)
		attrs := metric.WithAttributes(attribute.String("db.operation", op))

		o.ops.Add(ctx, 1, attrs)
		o.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

		if err != nil && !isClientError(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.errs.Add(ctx, 1, attrs)
			o.logger.LogAttrs(ctx, slog.LevelError, "store operation failed",
				slog.String("operation", op),
				slog.Duration("duration", elapsed),
				slog.String("error", err.Error()),
			)
			return
		}

		if elapsed > slowOperation {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "slow store operation",
				slog.String("operation", op),
				slog.Duration("duration", elapsed),
			)
		}
	}
}
