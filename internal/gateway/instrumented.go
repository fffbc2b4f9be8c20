package gateway

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/groupcard/internal/metrics"
)

// Instrumented records call counts and latency for every gateway operation.
type Instrumented struct {
	next Gateway
}

// WithMetrics wraps g with Prometheus instrumentation.
func WithMetrics(g Gateway) *Instrumented {
	return &Instrumented{next: g}
}

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GatewayCallsTotal.WithLabelValues(op, outcome).Inc()
}

func (g *Instrumented) CreateHold(ctx context.Context, req HoldRequest) (HoldResult, error) {
	timer := prometheus.NewTimer(metrics.GatewayCallDuration.WithLabelValues(OpCreateHold))
	defer timer.ObserveDuration()

	res, err := g.next.CreateHold(ctx, req)
	if err == nil && !res.Authorized {
		metrics.GatewayCallsTotal.WithLabelValues(OpCreateHold, "not_authorized").Inc()
		return res, nil
	}
	observe(OpCreateHold, err)
	return res, err
}

func (g *Instrumented) CancelHold(ctx context.Context, authRef string) error {
	timer := prometheus.NewTimer(metrics.GatewayCallDuration.WithLabelValues(OpCancelHold))
	defer timer.ObserveDuration()

	err := g.next.CancelHold(ctx, authRef)
	observe(OpCancelHold, err)
	return err
}

func (g *Instrumented) CaptureHold(ctx context.Context, authRef string) error {
	timer := prometheus.NewTimer(metrics.GatewayCallDuration.WithLabelValues(OpCaptureHold))
	defer timer.ObserveDuration()

	err := g.next.CaptureHold(ctx, authRef)
	observe(OpCaptureHold, err)
	return err
}
