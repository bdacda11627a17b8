package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avnodegraph/core/pkg/cache"
	"github.com/avnodegraph/core/pkg/dirty"
	"github.com/avnodegraph/core/pkg/graph"
	"github.com/avnodegraph/core/pkg/logging"
	"github.com/avnodegraph/core/pkg/nodesig"
	"github.com/avnodegraph/core/pkg/observer"
	"github.com/avnodegraph/core/pkg/telemetry"
	"github.com/avnodegraph/core/pkg/types"
)

// Evaluator is the Topological Evaluator component (C4). It drives
// evaluation passes over the nodes registered with it, reading from the
// dependency graph and dirty tracker and reading/writing the memoization
// cache. Each collaborator owns its own lock, taken and released inside
// each call; Evaluator never holds one collaborator's lock while calling
// into another, nor a lock of its own across them.
type Evaluator struct {
	graph   *graph.Graph
	tracker *dirty.Tracker
	cache   *cache.Cache
	cfg     Config

	nodesMu sync.RWMutex
	nodes   map[types.NodeID]types.Node

	blobValidators map[types.NodeID]*nodesig.Validator

	observers *observer.Manager
	logger    *logging.Logger
	telemetry *telemetry.Provider

	// RecordNodeDurations, when true, populates EvaluationResult.NodeDurations.
	RecordNodeDurations bool
}

// New constructs an Evaluator over the given collaborators.
func New(g *graph.Graph, tracker *dirty.Tracker, c *cache.Cache, cfg Config) *Evaluator {
	return &Evaluator{
		graph:     g,
		tracker:   tracker,
		cache:     c,
		cfg:       cfg,
		nodes:     make(map[types.NodeID]types.Node),
		observers: observer.NewManager(),
		logger:    logging.New(logging.DefaultConfig()),
	}
}

// RegisterObserver adds an observer to receive pass/node events. Returns
// the evaluator for chaining.
func (e *Evaluator) RegisterObserver(obs observer.Observer) *Evaluator {
	e.observers.Register(obs)
	return e
}

// SetLogger replaces the evaluator's structured logger. A nil logger is
// ignored, leaving the previous (or default) logger in place.
func (e *Evaluator) SetLogger(logger *logging.Logger) *Evaluator {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// SetTelemetry attaches a telemetry.Provider so every pass records
// evaluator.passes.total/evaluator.pass.duration and every node records
// evaluator.node.evaluations.total/evaluator.node.duration. A nil provider
// is ignored, leaving the evaluator unmonitored (the default). Returns the
// evaluator for chaining.
func (e *Evaluator) SetTelemetry(p *telemetry.Provider) *Evaluator {
	if p != nil {
		e.telemetry = p
	}
	return e
}

// RegisterNode adds node's capability object to the evaluator and, if not
// already present, registers node.ID() with the dependency graph and
// dirty tracker. Registering an id the graph already has is not an error:
// the graph is left as it is and node replaces the capability object
// previously held under that id.
func (e *Evaluator) RegisterNode(node types.Node) error {
	id := node.ID()

	if !e.graph.HasNode(id) {
		if err := e.graph.AddNode(id); err != nil {
			return fmt.Errorf("evaluator: registering node %s: %w", id, err)
		}
	}
	e.tracker.Register(id)

	e.nodesMu.Lock()
	e.nodes[id] = node
	e.nodesMu.Unlock()
	return nil
}

// AddDependency declares that from depends on to, delegating to the
// dependency graph (ErrUnknownNode / ErrCycleDetected propagate unchanged).
func (e *Evaluator) AddDependency(from, to types.NodeID) error {
	return e.graph.AddEdge(from, to)
}

func (e *Evaluator) lookupNode(id types.NodeID) (types.Node, bool) {
	e.nodesMu.RLock()
	defer e.nodesMu.RUnlock()
	n, ok := e.nodes[id]
	return n, ok
}

// RegisterBlobSchema attaches a nodesig.Validator to id. Every subsequent
// pass validates id's ParamKindBytes signature parameters against it
// before the signature is used as a cache key, so a malformed blob fails
// the node up front instead of silently producing a cache key that can
// never match a future, corrected blob. Returns the evaluator for chaining.
func (e *Evaluator) RegisterBlobSchema(id types.NodeID, validator *nodesig.Validator) *Evaluator {
	e.nodesMu.Lock()
	defer e.nodesMu.Unlock()
	if e.blobValidators == nil {
		e.blobValidators = make(map[types.NodeID]*nodesig.Validator)
	}
	e.blobValidators[id] = validator
	return e
}

// validateBlobs runs every ParamKindBytes parameter in sig through id's
// registered validator, if any. A node with no registered validator always
// passes.
func (e *Evaluator) validateBlobs(id types.NodeID, sig types.NodeSignature) error {
	e.nodesMu.RLock()
	v, ok := e.blobValidators[id]
	e.nodesMu.RUnlock()
	if !ok {
		return nil
	}

	for name, param := range sig.Params {
		if param.Kind() != types.ParamKindBytes {
			continue
		}
		blob, _ := param.BytesValue()
		if _, err := v.Validate(blob); err != nil {
			return fmt.Errorf("param %q: %w", name, err)
		}
	}
	return nil
}

// EvaluateAll evaluates every registered node in topological order.
func (e *Evaluator) EvaluateAll(ctx context.Context) (*EvaluationResult, error) {
	order, err := e.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphMutatedDuringEvaluation, err)
	}
	return e.runPass(ctx, KindFull, order)
}

// EvaluateIncremental computes the affected set (sources union their
// transitive successors), marks it dirty, and evaluates in topological
// order restricted to that set plus any ancestor of an affected node that
// is currently dirty.
func (e *Evaluator) EvaluateIncremental(ctx context.Context, sources []types.NodeID) (*EvaluationResult, error) {
	affected := make(map[types.NodeID]struct{}, len(sources))
	for _, s := range sources {
		affected[s] = struct{}{}
		for _, succ := range e.graph.TransitiveSuccessors(s) {
			affected[succ] = struct{}{}
		}
	}

	affectedList := make([]types.NodeID, 0, len(affected))
	for id := range affected {
		affectedList = append(affectedList, id)
	}
	if err := e.tracker.MarkBatch(affectedList, types.DirtyNormal); err != nil {
		return nil, fmt.Errorf("evaluator: marking affected set dirty: %w", err)
	}

	restricted := make(map[types.NodeID]struct{}, len(affected))
	for id := range affected {
		restricted[id] = struct{}{}
		for _, ancestor := range e.graph.TransitivePredecessors(id) {
			if e.tracker.IsDirty(ancestor) {
				restricted[ancestor] = struct{}{}
			}
		}
	}

	subset := make([]types.NodeID, 0, len(restricted))
	for id := range restricted {
		subset = append(subset, id)
	}

	order, err := e.graph.TopologicalOrderRestricted(subset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphMutatedDuringEvaluation, err)
	}
	return e.runPass(ctx, KindIncremental, order)
}

// EvaluateNode evaluates id, preceded by any dirty ancestor of id.
func (e *Evaluator) EvaluateNode(ctx context.Context, id types.NodeID) (*EvaluationResult, error) {
	restricted := map[types.NodeID]struct{}{id: {}}
	for _, ancestor := range e.graph.TransitivePredecessors(id) {
		if e.tracker.IsDirty(ancestor) {
			restricted[ancestor] = struct{}{}
		}
	}

	subset := make([]types.NodeID, 0, len(restricted))
	for nid := range restricted {
		subset = append(subset, nid)
	}

	order, err := e.graph.TopologicalOrderRestricted(subset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphMutatedDuringEvaluation, err)
	}
	return e.runPass(ctx, KindSingle, order)
}

// runPass walks order once, applying the per-node procedure from spec.md
// §4.4: signature, cache lookup, evaluate-on-miss, mark evaluated/clear
// dirty. attempted tracks which nodes this pass has finished handling
// (success, failure, or cache hit) so the dependency-evaluated invariant
// can be checked without conflating "failed" with "never reached".
func (e *Evaluator) runPass(ctx context.Context, kind Kind, order []types.NodeID) (*EvaluationResult, error) {
	executionID := uuid.New().String()
	result := &EvaluationResult{
		ExecutionID: executionID,
		Kind:        kind,
		StartedAt:   time.Now(),
	}

	passLogger := e.logger.WithExecutionID(executionID)
	passLogger.WithField("kind", kind.String()).WithField("node_count", len(order)).Debug("evaluation pass started")

	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventPassStart,
		Status:      observer.StatusStarted,
		Timestamp:   result.StartedAt,
		ExecutionID: executionID,
	})

	attempted := make(map[types.NodeID]bool, len(order))

	var fatal error
	for _, id := range order {
		if !e.graph.HasNode(id) {
			fatal = ErrGraphMutatedDuringEvaluation
			break
		}
		node, ok := e.lookupNode(id)
		if !ok {
			fatal = ErrCorruptGraph
			break
		}

		nodeStart := time.Now()
		e.observers.Notify(ctx, observer.Event{
			Type:        observer.EventNodeStart,
			Status:      observer.StatusStarted,
			Timestamp:   nodeStart,
			ExecutionID: executionID,
			NodeID:      id,
			StartTime:   nodeStart,
		})

		sig := node.Signature()

		if err := e.validateBlobs(id, sig); err != nil {
			attempted[id] = true
			nerr := &NodeEvaluationError{NodeID: id, Err: err}
			e.recordNodeFailure(ctx, passLogger, executionID, id, nodeStart, nerr, result)
			if e.cfg.HaltOnFirstFailure {
				break
			}
			continue
		}

		if cached, hit := e.cache.Lookup(id, sig); hit {
			e.tracker.Clear(id)
			attempted[id] = true
			result.EvaluatedCount++
			result.CachedCount++
			e.notifyNodeSuccess(ctx, executionID, id, nodeStart, cached)
			continue
		}

		ready := true
		for _, p := range e.graph.Predecessors(id) {
			if !e.graph.HasNode(p) {
				fatal = ErrCorruptGraph
				ready = false
				break
			}
			if !attempted[p] && e.tracker.IsDirty(p) {
				fatal = ErrDependencyNotEvaluated
				ready = false
				break
			}
		}
		if !ready {
			break
		}

		evalStart := time.Now()
		res, err := node.Evaluate()
		duration := time.Since(evalStart)
		attempted[id] = true

		if e.RecordNodeDurations {
			result.NodeDurations = append(result.NodeDurations, NodeDuration{NodeID: id, Duration: duration})
		}

		if err != nil {
			nerr := &NodeEvaluationError{NodeID: id, Err: err}
			e.recordNodeFailure(ctx, passLogger, executionID, id, nodeStart, nerr, result)
			if e.cfg.HaltOnFirstFailure {
				break
			}
			continue
		}

		e.cache.Store(id, sig, res)
		e.tracker.Clear(id)
		result.EvaluatedCount++
		e.notifyNodeSuccess(ctx, executionID, id, nodeStart, res)
	}

	result.EndedAt = time.Now()
	result.Duration = result.EndedAt.Sub(result.StartedAt)
	result.AllSucceeded = fatal == nil && result.FailedCount == 0

	if e.telemetry != nil {
		e.telemetry.RecordEvaluationPass(ctx, kind.String(), result.Duration, result.AllSucceeded, result.EvaluatedCount)
	}

	passStatus := observer.StatusSuccess
	var passErr error
	if fatal != nil {
		passStatus = observer.StatusFailure
		passErr = fatal
	} else if result.FailedCount > 0 {
		passStatus = observer.StatusFailure
	}

	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventPassEnd,
		Status:      passStatus,
		Timestamp:   result.EndedAt,
		ExecutionID: executionID,
		ElapsedTime: result.Duration,
		Error:       passErr,
		Metadata: map[string]interface{}{
			"kind":            kind.String(),
			"evaluated_count": result.EvaluatedCount,
			"failed_count":    result.FailedCount,
			"cached_count":    result.CachedCount,
		},
	})

	if fatal != nil {
		passLogger.WithError(fatal).Error("evaluation pass aborted")
		return result, fatal
	}

	passLogger.
		WithField("evaluated_count", result.EvaluatedCount).
		WithField("failed_count", result.FailedCount).
		WithField("duration_ms", result.Duration.Milliseconds()).
		Info("evaluation pass completed")
	return result, nil
}

// recordNodeFailure records a failed node (whether the failure came from
// blob validation or from Evaluate itself) into result and notifies
// observers, sharing the bookkeeping both failure sites need.
func (e *Evaluator) recordNodeFailure(ctx context.Context, passLogger *logging.Logger, executionID string, id types.NodeID, startTime time.Time, nerr *NodeEvaluationError, result *EvaluationResult) {
	result.FailedCount++
	result.Failures = append(result.Failures, nerr)
	if e.telemetry != nil {
		e.telemetry.RecordNodeEvaluation(ctx, id, time.Since(startTime), false)
	}
	passLogger.WithNodeID(id.String()).WithError(nerr.Err).Warn("node evaluation failed")
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventNodeFailure,
		Status:      observer.StatusFailure,
		Timestamp:   time.Now(),
		ExecutionID: executionID,
		NodeID:      id,
		StartTime:   startTime,
		ElapsedTime: time.Since(startTime),
		Error:       nerr,
	})
}

func (e *Evaluator) notifyNodeSuccess(ctx context.Context, executionID string, id types.NodeID, startTime time.Time, res types.Result) {
	if e.telemetry != nil {
		e.telemetry.RecordNodeEvaluation(ctx, id, time.Since(startTime), true)
	}
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventNodeSuccess,
		Status:      observer.StatusSuccess,
		Timestamp:   time.Now(),
		ExecutionID: executionID,
		NodeID:      id,
		StartTime:   startTime,
		ElapsedTime: time.Since(startTime),
		Result:      res,
	})
}
