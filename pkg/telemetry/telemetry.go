package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/avnodegraph/core/pkg/types"
)

const (
	serviceName = "avnodegraph-core"

	metricEvaluationPasses  = "evaluator.passes.total"
	metricEvaluationDuration = "evaluator.pass.duration"
	metricEvaluationSuccess = "evaluator.passes.success.total"
	metricEvaluationFailure = "evaluator.passes.failure.total"
	metricNodeEvaluations   = "evaluator.node.evaluations.total"
	metricNodeDuration      = "evaluator.node.duration"
	metricNodeSuccess       = "evaluator.node.success.total"
	metricNodeFailure       = "evaluator.node.failure.total"
	metricCacheHits         = "cache.hits.total"
	metricCacheMisses       = "cache.misses.total"
	metricFrameProcessed    = "scheduler.frames.total"
	metricFrameDuration     = "scheduler.frame.duration"
	metricFrameBatchSize    = "scheduler.frame.batch_size"
)

// Provider owns the OpenTelemetry meter and tracer wired to a Prometheus
// exporter, plus the instruments this module records against.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	evaluationPasses  metric.Int64Counter
	evaluationDuration metric.Float64Histogram
	evaluationSuccess metric.Int64Counter
	evaluationFailure metric.Int64Counter
	nodeEvaluations   metric.Int64Counter
	nodeDuration      metric.Float64Histogram
	nodeSuccess       metric.Int64Counter
	nodeFailure       metric.Int64Counter
	cacheHits         metric.Int64Counter
	cacheMisses       metric.Int64Counter
	frameProcessed    metric.Int64Counter
	frameDuration     metric.Float64Histogram
	frameBatchSize    metric.Int64Histogram

	mu sync.RWMutex
}

// Config controls telemetry setup.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
}

// DefaultConfig returns the module's default telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider builds a Provider with a Prometheus metrics exporter and,
// if enabled, a tracer.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	p := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating resource: %w", err)
	}

	if config.EnableMetrics {
		if err := p.initMetrics(res); err != nil {
			return nil, fmt.Errorf("telemetry: initializing metrics: %w", err)
		}
	}
	if config.EnableTracing {
		p.initTracing()
	}

	return p, nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("creating prometheus exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter(serviceName)

	return p.createInstruments()
}

func (p *Provider) initTracing() {
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

func (p *Provider) createInstruments() error {
	var err error

	if p.evaluationPasses, err = p.meter.Int64Counter(metricEvaluationPasses,
		metric.WithDescription("Total number of evaluation passes")); err != nil {
		return err
	}
	if p.evaluationDuration, err = p.meter.Float64Histogram(metricEvaluationDuration,
		metric.WithDescription("Evaluation pass duration"), metric.WithUnit("ms")); err != nil {
		return err
	}
	if p.evaluationSuccess, err = p.meter.Int64Counter(metricEvaluationSuccess,
		metric.WithDescription("Evaluation passes where every node succeeded")); err != nil {
		return err
	}
	if p.evaluationFailure, err = p.meter.Int64Counter(metricEvaluationFailure,
		metric.WithDescription("Evaluation passes with at least one node failure")); err != nil {
		return err
	}
	if p.nodeEvaluations, err = p.meter.Int64Counter(metricNodeEvaluations,
		metric.WithDescription("Total per-node evaluations")); err != nil {
		return err
	}
	if p.nodeDuration, err = p.meter.Float64Histogram(metricNodeDuration,
		metric.WithDescription("Per-node evaluation duration"), metric.WithUnit("ms")); err != nil {
		return err
	}
	if p.nodeSuccess, err = p.meter.Int64Counter(metricNodeSuccess,
		metric.WithDescription("Total successful node evaluations")); err != nil {
		return err
	}
	if p.nodeFailure, err = p.meter.Int64Counter(metricNodeFailure,
		metric.WithDescription("Total failed node evaluations")); err != nil {
		return err
	}
	if p.cacheHits, err = p.meter.Int64Counter(metricCacheHits,
		metric.WithDescription("Total memoization cache hits")); err != nil {
		return err
	}
	if p.cacheMisses, err = p.meter.Int64Counter(metricCacheMisses,
		metric.WithDescription("Total memoization cache misses")); err != nil {
		return err
	}
	if p.frameProcessed, err = p.meter.Int64Counter(metricFrameProcessed,
		metric.WithDescription("Total scheduler frames processed")); err != nil {
		return err
	}
	if p.frameDuration, err = p.meter.Float64Histogram(metricFrameDuration,
		metric.WithDescription("Scheduler per-frame processing duration"), metric.WithUnit("ms")); err != nil {
		return err
	}
	if p.frameBatchSize, err = p.meter.Int64Histogram(metricFrameBatchSize,
		metric.WithDescription("Scheduler events drained per frame")); err != nil {
		return err
	}
	return nil
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics.
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordEvaluationPass records one C4 evaluation pass.
func (p *Provider) RecordEvaluationPass(ctx context.Context, kind string, duration time.Duration, allSucceeded bool, evaluatedCount int) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("evaluation.kind", kind),
		attribute.Int("evaluated.count", evaluatedCount),
	}
	p.evaluationPasses.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.evaluationDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if allSucceeded {
		p.evaluationSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.evaluationFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordNodeEvaluation records one node's outcome within a pass: a fresh
// Evaluate() call, a cache hit (success), or a failed blob validation.
func (p *Provider) RecordNodeEvaluation(ctx context.Context, id types.NodeID, duration time.Duration, success bool) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("node.id", id.String())}
	p.nodeEvaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.nodeDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if success {
		p.nodeSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.nodeFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordCacheLookup records one C3 lookup outcome.
func (p *Provider) RecordCacheLookup(ctx context.Context, hit bool) {
	if p.meter == nil {
		return
	}
	if hit {
		p.cacheHits.Add(ctx, 1)
	} else {
		p.cacheMisses.Add(ctx, 1)
	}
}

// RecordFrame records one C5 process_frame invocation. batchSize is the
// number of events the frame drained (audio plus visual).
func (p *Provider) RecordFrame(ctx context.Context, processingTime time.Duration, batchSize int) {
	if p.meter == nil {
		return
	}
	p.frameProcessed.Add(ctx, 1)
	p.frameDuration.Record(ctx, float64(processingTime.Milliseconds()))
	p.frameBatchSize.Record(ctx, int64(batchSize))
}

// Shutdown gracefully shuts down the telemetry provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutting down meter provider: %w", err)
		}
	}
	return nil
}
