package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mandel "github.com/marben/mandel_bench"
)

var (
	// computeTotal counts compute requests by transport and result
	computeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mandel_worker_compute_total",
		Help: "Compute requests handled by workers, by transport and result",
	}, []string{"transport", "result"})

	// computeDuration tracks round-trip compute latency
	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mandel_worker_compute_duration_seconds",
		Help:    "Compute round-trip duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
	}, []string{"transport"})
)

var tracer = otel.Tracer("github.com/marben/mandel_bench/worker")

// observe opens a span for one compute round trip. The returned func
// records the outcome on both the span and the prometheus collectors.
func observe(ctx context.Context, transport string, vp mandel.Viewport) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, transport+".Compute", trace.WithAttributes(
		attribute.String("transport", transport),
		attribute.Int("viewport.width", vp.PixelWidth),
		attribute.Int("viewport.height", vp.PixelHeight),
		attribute.Float64("viewport.scale", vp.Scale),
	))

	return ctx, func(err error) {
		defer span.End()
		computeDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			computeTotal.WithLabelValues(transport, "error").Inc()
			return
		}
		span.SetStatus(codes.Ok, "")
		computeTotal.WithLabelValues(transport, "ok").Inc()
	}
}
