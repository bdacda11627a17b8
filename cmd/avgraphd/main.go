// Command avgraphd runs the incremental evaluation core as a standalone
// process: a small demo dependency graph is registered, a scheduler loop
// drives frame-paced audio/visual events, and once a second a full
// evaluation pass re-evaluates the demo graph's drifting nodes, with
// unchanged signatures served from the cache. /health,
// /health/live, /health/ready, and /metrics are served over HTTP so the
// process can sit behind a readiness probe and a Prometheus scrape.
//
// Usage:
//
//	avgraphd [flags]
//
// Flags:
//
//	-addr string
//	    HTTP address for health/metrics endpoints (default ":8080")
//	-frame-rate uint
//	    Target scheduler frame rate in frames per second (default 60)
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avnodegraph/core/pkg/cache"
	"github.com/avnodegraph/core/pkg/dirty"
	"github.com/avnodegraph/core/pkg/evaluator"
	"github.com/avnodegraph/core/pkg/graph"
	"github.com/avnodegraph/core/pkg/health"
	"github.com/avnodegraph/core/pkg/logging"
	"github.com/avnodegraph/core/pkg/observer"
	"github.com/avnodegraph/core/pkg/scheduler"
	"github.com/avnodegraph/core/pkg/telemetry"
	"github.com/avnodegraph/core/pkg/types"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP address for health/metrics endpoints")
	frameRate := flag.Uint("frame-rate", 60, "Target scheduler frame rate in frames per second")
	flag.Parse()

	logger := logging.New(logging.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := telemetry.NewProvider(ctx, telemetry.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start telemetry: %v\n", err)
		os.Exit(1)
	}

	g := graph.New()
	tracker := dirty.New(dirty.Default())
	memo := cache.New(cache.Default())
	eval := evaluator.New(g, tracker, memo, evaluator.Default())
	eval.SetLogger(logger).SetTelemetry(provider).RegisterObserver(observer.NewConsoleObserver(newSlogAdapter(logger)))
	memo.SetTelemetry(provider)

	schedCfg := scheduler.Default()
	schedCfg.TargetFrameRate = uint16(*frameRate)
	sched := scheduler.New(schedCfg)
	sched.SetLogger(logger)

	left, right, _ := buildDemoGraph(eval)

	checker := health.NewChecker("avgraphd", "0.1.0")
	checker.RegisterCheck("cache_hit_rate", health.CacheHitRateCheck(memo, 0.5), 2*time.Second, false)
	checker.RegisterCheck("dirty_backlog", health.DirtyBacklogCheck(tracker, 5*time.Second), 2*time.Second, true)
	checker.RegisterCheck("audio_queue_depth", health.QueueDepthCheck("audio", sched.AudioDepth, int(schedCfg.MaxQueueDepth)), 2*time.Second, false)
	checker.RegisterCheck("visual_queue_depth", health.QueueDepthCheck("visual", sched.VisualDepth, int(schedCfg.MaxQueueDepth)), 2*time.Second, false)

	mux := http.NewServeMux()
	mux.Handle("/health", checker.HTTPHandler())
	mux.Handle("/health/live", checker.LivenessHandler())
	mux.Handle("/health/ready", checker.ReadinessHandler())
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("avgraphd listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	stopLoop := runLoop(ctx, sched, eval, logger, provider, uint16(*frameRate), left, right)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Errorf("http server error: %v", err)
	case sig := <-sigChan:
		logger.Infof("received signal %v, shutting down", sig)
	}

	cancel()
	<-stopLoop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown error: %v", err)
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("telemetry shutdown error: %v", err)
	}
	logger.Info("avgraphd stopped")
}

// buildDemoGraph registers a small fan-in graph: two oscillators feeding
// a mixer, so incremental evaluation and memoization both have something
// to do once the loop starts perturbing the oscillators.
func buildDemoGraph(eval *evaluator.Evaluator) (*oscillatorNode, *oscillatorNode, *mixerNode) {
	left := newOscillatorNode("osc.left")
	right := newOscillatorNode("osc.right")
	mixer := newMixerNode("mixer.out", left, right)

	must(eval.RegisterNode(left))
	must(eval.RegisterNode(right))
	must(eval.RegisterNode(mixer))
	must(eval.AddDependency("mixer.out", "osc.left"))
	must(eval.AddDependency("mixer.out", "osc.right"))

	return left, right, mixer
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// runLoop drives the scheduler at its configured frame rate and runs an
// evaluator pass once per second, returning a channel closed once the
// loop has observed ctx cancellation and exited cleanly.
func runLoop(ctx context.Context, sched *scheduler.Scheduler, eval *evaluator.Evaluator, logger *logging.Logger, provider *telemetry.Provider, frameRate uint16, oscillators ...*oscillatorNode) <-chan struct{} {
	done := make(chan struct{})

	if frameRate == 0 {
		frameRate = 60
	}
	frameTicker := time.NewTicker(time.Second / time.Duration(frameRate))
	evalTicker := time.NewTicker(time.Second)

	go func() {
		defer close(done)
		defer frameTicker.Stop()
		defer evalTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-frameTicker.C:
				for _, osc := range oscillators {
					osc.tick()
				}
				_ = sched.QueueVisual(types.Event{
					Timestamp: time.Now(),
					Priority:  types.PriorityNormal,
					ParamName: "mixer.out.level",
				})

				start := time.Now()
				stats := sched.ProcessFrame(ctx, func(types.Event) {})
				provider.RecordFrame(ctx, time.Since(start), stats.AudioDrained+stats.VisualDrained)
			case <-evalTicker.C:
				if _, err := eval.EvaluateAll(ctx); err != nil {
					logger.Errorf("evaluation pass aborted: %v", err)
				}
			}
		}
	}()

	return done
}
