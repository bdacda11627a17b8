package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avnodegraph/core/pkg/observer"
	"github.com/avnodegraph/core/pkg/types"
)

// EvaluationObserver implements observer.Observer and converts evaluation
// events into OpenTelemetry spans and metric records.
type EvaluationObserver struct {
	provider *Provider

	passSpan      trace.Span
	passStartedAt time.Time

	nodeSpans      map[types.NodeID]trace.Span
	nodeStartedAt  map[types.NodeID]time.Time
}

// NewEvaluationObserver wraps provider as an observer.Observer.
func NewEvaluationObserver(provider *Provider) *EvaluationObserver {
	return &EvaluationObserver{
		provider:      provider,
		nodeSpans:     make(map[types.NodeID]trace.Span),
		nodeStartedAt: make(map[types.NodeID]time.Time),
	}
}

func (o *EvaluationObserver) OnEvent(ctx context.Context, event observer.Event) {
	switch event.Type {
	case observer.EventPassStart:
		o.onPassStart(ctx, event)
	case observer.EventPassEnd:
		o.onPassEnd(ctx, event)
	case observer.EventNodeStart:
		o.onNodeStart(ctx, event)
	case observer.EventNodeSuccess:
		o.onNodeEnd(ctx, event, true)
	case observer.EventNodeFailure:
		o.onNodeEnd(ctx, event, false)
	}
}

func (o *EvaluationObserver) onPassStart(ctx context.Context, event observer.Event) {
	if o.provider.Tracer() == nil {
		return
	}
	_, span := o.provider.Tracer().Start(ctx, "evaluator.pass",
		trace.WithAttributes(attribute.String("execution.id", event.ExecutionID)))
	o.passSpan = span
	o.passStartedAt = event.Timestamp
}

func (o *EvaluationObserver) onPassEnd(ctx context.Context, event observer.Event) {
	duration := time.Since(o.passStartedAt)
	kind := "unknown"
	if val, ok := event.Metadata["kind"].(string); ok {
		kind = val
	}
	evaluated := 0
	if val, ok := event.Metadata["evaluated_count"].(int); ok {
		evaluated = val
	}

	o.provider.RecordEvaluationPass(ctx, kind, duration, event.Status == observer.StatusSuccess, evaluated)

	if o.passSpan != nil {
		if event.Error != nil {
			o.passSpan.RecordError(event.Error)
			o.passSpan.SetStatus(codes.Error, event.Error.Error())
		} else {
			o.passSpan.SetStatus(codes.Ok, "pass completed")
		}
		o.passSpan.End()
		o.passSpan = nil
	}
}

func (o *EvaluationObserver) onNodeStart(ctx context.Context, event observer.Event) {
	parent := ctx
	if o.passSpan != nil {
		parent = trace.ContextWithSpan(ctx, o.passSpan)
	}
	o.nodeStartedAt[event.NodeID] = event.Timestamp

	if o.provider.Tracer() == nil {
		return
	}
	_, span := o.provider.Tracer().Start(parent, "evaluator.node",
		trace.WithAttributes(attribute.String("node.id", event.NodeID.String())))
	o.nodeSpans[event.NodeID] = span
}

func (o *EvaluationObserver) onNodeEnd(ctx context.Context, event observer.Event, success bool) {
	var duration time.Duration
	if start, ok := o.nodeStartedAt[event.NodeID]; ok {
		duration = time.Since(start)
		delete(o.nodeStartedAt, event.NodeID)
	}
	o.provider.RecordNodeEvaluation(ctx, event.NodeID, duration, success)

	if span, ok := o.nodeSpans[event.NodeID]; ok {
		if event.Error != nil {
			span.RecordError(event.Error)
			span.SetStatus(codes.Error, event.Error.Error())
		} else {
			span.SetStatus(codes.Ok, "node evaluated")
		}
		span.End()
		delete(o.nodeSpans, event.NodeID)
	}
}
