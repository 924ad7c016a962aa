package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PhaseContext tracks one protocol phase: its span and its duration metric.
type PhaseContext struct {
	Protocol  string
	Phase     string
	RunID     string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

// StartPhase starts the phase span. If metrics is nil, metric recording is
// skipped.
func StartPhase(ctx context.Context, protocol, phase, runID string, metrics *Metrics) (context.Context, *PhaseContext) {
	pc := &PhaseContext{
		Protocol:  protocol,
		Phase:     phase,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
	ctx, pc.span = StartSpan(ctx, SpanPhase, trace.WithAttributes(
		attribute.String(AttrProtocol, protocol),
		attribute.String(AttrPhase, phase),
		attribute.String(AttrRunID, runID),
	))
	return context.WithValue(ctx, phaseContextKey{}, pc), pc
}

type phaseContextKey struct{}

// PhaseFromContext returns the PhaseContext started on ctx, or nil.
func PhaseFromContext(ctx context.Context) *PhaseContext {
	if pc, ok := ctx.Value(phaseContextKey{}).(*PhaseContext); ok {
		return pc
	}
	return nil
}

// End ends the span and records the phase duration with an "ok" or
// "error" status.
func (pc *PhaseContext) End(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	pc.span.SetAttributes(attribute.String(AttrStatus, status))
	EndSpan(pc.span, err)
	pc.Metrics.RecordPhase(ctx, pc.Protocol, pc.Phase, status, pc.Duration())
}

// Duration returns the elapsed time since the phase started.
func (pc *PhaseContext) Duration() time.Duration {
	return time.Since(pc.StartTime)
}
