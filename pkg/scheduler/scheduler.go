package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/avnodegraph/core/pkg/logging"
	"github.com/avnodegraph/core/pkg/observer"
	"github.com/avnodegraph/core/pkg/types"
)

// Scheduler is the A/V Queue Scheduler component (C5). It holds two
// priority queues, audio and visual, and drains a batch of each per
// ProcessFrame call, applying backpressure under congestion and adapting
// its batch size to how much of the frame budget the previous frame used.
type Scheduler struct {
	mu sync.Mutex

	cfg Config

	audio  eventHeap
	visual eventHeap

	batchSize       int
	frameNumber     uint64
	sequenceCounter uint64

	subsMu  sync.Mutex
	nextSub int
	subs    map[int]chan SyncEvent

	observers *observer.Manager
	logger    *logging.Logger
	normalize cases.Caser
}

// New constructs a Scheduler from cfg.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		batchSize: int(cfg.InitialBatchSize),
		subs:      make(map[int]chan SyncEvent),
		observers: observer.NewManager(),
		logger:    logging.New(logging.DefaultConfig()),
		normalize: cases.Lower(language.Und),
	}
}

// RegisterObserver adds an observer to receive frame/backpressure events.
// Returns the scheduler for chaining.
func (s *Scheduler) RegisterObserver(obs observer.Observer) *Scheduler {
	s.observers.Register(obs)
	return s
}

// SetLogger replaces the scheduler's structured logger. A nil logger is
// ignored.
func (s *Scheduler) SetLogger(logger *logging.Logger) *Scheduler {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// frameBudget is T, the wall-clock duration one frame is allotted at the
// configured target frame rate.
func (s *Scheduler) frameBudget() time.Duration {
	rate := s.cfg.TargetFrameRate
	if rate == 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// QueueAudio enqueues an audio event, returning ErrQueueFull if the
// combined queue is congested and event's priority cannot displace
// anything already queued.
func (s *Scheduler) QueueAudio(event types.Event) error {
	event.Kind = s.normalizeKind(event.Kind, types.EventKindAudio)
	return s.enqueue(&s.audio, &s.visual, event)
}

// QueueVisual enqueues a visual parameter update, returning ErrQueueFull
// if the combined queue is congested and event's priority cannot displace
// anything already queued.
func (s *Scheduler) QueueVisual(event types.Event) error {
	event.Kind = s.normalizeKind(event.Kind, types.EventKindVisual)
	return s.enqueue(&s.visual, &s.audio, event)
}

// normalizeKind lowercases whatever Kind the caller actually supplied, so
// e.g. "Audio" and "AUDIO" both land in the same kind-keyed bucket as the
// canonical constant. A caller that leaves Kind unset gets fallback
// instead of an empty string.
func (s *Scheduler) normalizeKind(kind, fallback types.EventKind) types.EventKind {
	if kind == "" {
		return fallback
	}
	return types.EventKind(s.normalize.String(string(kind)))
}

func (s *Scheduler) enqueue(target, other *eventHeap, event types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequenceCounter++
	event = event.WithSequence(s.sequenceCounter)
	item := &queueItem{event: event}

	if pending := target.Len() + other.Len(); uint32(pending) >= s.cfg.MaxQueueDepth {
		if !s.admit(target, other, item) {
			return fmt.Errorf("%w: priority %s, depth %d", ErrQueueFull, event.Priority, pending)
		}
		return nil
	}

	heap.Push(target, item)
	return nil
}

// admit implements the ranked eviction-cascade backpressure rule: under
// congestion, an incoming event may only be queued if it evicts the
// oldest pending event from the lowest priority class strictly below its
// own (scanning Low, then Normal, then High), searching target before
// other. Critical is never rejected: it is pushed regardless of whether a
// victim was found. Returns false if event was rejected.
func (s *Scheduler) admit(target, other *eventHeap, item *queueItem) bool {
	evicted := false
	for victim := types.PriorityLow; victim < item.event.Priority; victim++ {
		if s.evictOldest(target, victim) || s.evictOldest(other, victim) {
			evicted = true
			break
		}
	}

	if !evicted && item.event.Priority != types.PriorityCritical {
		s.notifyBackpressure(item.event)
		return false
	}

	heap.Push(target, item)
	return true
}

func (s *Scheduler) evictOldest(h *eventHeap, priority types.Priority) bool {
	idx := h.oldestOfPriority(priority)
	if idx < 0 {
		return false
	}
	heap.Remove(h, idx)
	return true
}

func (s *Scheduler) notifyBackpressure(event types.Event) {
	s.observers.Notify(context.Background(), observer.Event{
		Type:      observer.EventQueueBackpressure,
		Status:    observer.StatusFailure,
		Timestamp: time.Now(),
		Metadata: map[string]interface{}{
			"priority": event.Priority.String(),
			"kind":     string(event.Kind),
		},
	})
}

// PendingCount returns the combined audio+visual pending count.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio.Len() + s.visual.Len()
}

// AudioDepth returns the audio queue's current pending count.
func (s *Scheduler) AudioDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio.Len()
}

// VisualDepth returns the visual queue's current pending count.
func (s *Scheduler) VisualDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visual.Len()
}

// ProcessFrame drains up to the current batch size from each of the
// audio and visual queues, in strict priority-then-FIFO order, and
// broadcasts a SyncEvent to every subscriber of SyncEventStream. Handler,
// if non-nil, is invoked once per drained event in drain order: all
// audio, then all visual.
func (s *Scheduler) ProcessFrame(ctx context.Context, handler func(types.Event)) *FrameStats {
	return s.processFrame(ctx, handler, false)
}

// ProcessFrameWithOptimization behaves like ProcessFrame but additionally
// coalesces the drained visual batch by ParamName, keeping only the
// latest-timestamp update per name and counting the rest as
// FrameStats.Coalesced. Audio events are never coalesced.
func (s *Scheduler) ProcessFrameWithOptimization(ctx context.Context, handler func(types.Event)) *FrameStats {
	return s.processFrame(ctx, handler, true)
}

func (s *Scheduler) processFrame(ctx context.Context, handler func(types.Event), optimize bool) *FrameStats {
	start := time.Now()

	s.mu.Lock()
	s.frameNumber++
	frameNumber := s.frameNumber
	batch := s.batchSize

	audioDrained := popN(&s.audio, batch)
	visualDrained := popN(&s.visual, batch)
	pendingAfter := s.audio.Len() + s.visual.Len()
	s.mu.Unlock()

	coalesced := 0
	if optimize {
		visualDrained, coalesced = coalesceByParamName(visualDrained)
	}

	now := time.Now()
	var totalLatency time.Duration
	drainedCount := 0
	for _, e := range audioDrained {
		totalLatency += now.Sub(e.Timestamp)
		drainedCount++
		if handler != nil {
			handler(e)
		}
	}
	for _, e := range visualDrained {
		totalLatency += now.Sub(e.Timestamp)
		drainedCount++
		if handler != nil {
			handler(e)
		}
	}

	var avgLatency time.Duration
	if drainedCount > 0 {
		avgLatency = totalLatency / time.Duration(drainedCount)
	}

	processingTime := time.Since(start)
	s.adaptBatchSize(processingTime)

	stats := &FrameStats{
		FrameNumber:   frameNumber,
		AudioDrained:  len(audioDrained),
		VisualDrained: len(visualDrained),
		Coalesced:     coalesced,
		PendingAfter:  pendingAfter,
		AvgLatency:    avgLatency,
		ProcessingMs:  float64(processingTime.Microseconds()) / 1000.0,
	}

	s.observers.Notify(ctx, observer.Event{
		Type:      observer.EventFrameProcessed,
		Status:    observer.StatusSuccess,
		Timestamp: now,
		Metadata: map[string]interface{}{
			"frame_number":   stats.FrameNumber,
			"audio_drained":  stats.AudioDrained,
			"visual_drained": stats.VisualDrained,
			"coalesced":      stats.Coalesced,
			"pending_after":  stats.PendingAfter,
		},
	})

	s.broadcastSync(SyncEvent{
		FrameNumber:   stats.FrameNumber,
		AudioDrained:  stats.AudioDrained,
		VisualDrained: stats.VisualDrained,
		SyncAccuracy:  syncAccuracy(stats.AudioDrained, stats.VisualDrained),
	})

	s.logger.WithField("frame", stats.FrameNumber).
		WithField("audio_drained", stats.AudioDrained).
		WithField("visual_drained", stats.VisualDrained).
		WithField("batch_size", batch).
		Debug("frame processed")

	return stats
}

// coalesceByParamName keeps only the latest-timestamp event per
// ParamName, preserving the relative order of the surviving events, and
// returns how many were dropped.
func coalesceByParamName(events []types.Event) ([]types.Event, int) {
	latest := make(map[string]types.Event, len(events))
	for _, e := range events {
		cur, ok := latest[e.ParamName]
		if !ok || e.Timestamp.After(cur.Timestamp) {
			latest[e.ParamName] = e
		}
	}

	kept := make([]types.Event, 0, len(latest))
	seen := make(map[string]bool, len(latest))
	for _, e := range events {
		if seen[e.ParamName] {
			continue
		}
		seen[e.ParamName] = true
		kept = append(kept, latest[e.ParamName])
	}
	return kept, len(events) - len(kept)
}

// adaptBatchSize applies the adaptive batch-size rule: if the previous
// frame used more than 80% of the frame budget and there is a backlog
// larger than the current batch, shrink it by 25%; if it used less than
// 40% and there is still a backlog larger than the batch, grow it by
// 25%. Both directions clamp to [MinBatchSize, MaxBatchSize].
func (s *Scheduler) adaptBatchSize(processingTime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budget := s.frameBudget()
	pending := s.audio.Len() + s.visual.Len()
	if pending <= s.batchSize {
		return
	}

	ratio := float64(processingTime) / float64(budget)
	switch {
	case ratio > 0.8:
		s.batchSize = maxInt(int(s.cfg.MinBatchSize), int(float64(s.batchSize)*0.75))
	case ratio < 0.4:
		s.batchSize = minInt(int(s.cfg.MaxBatchSize), int(float64(s.batchSize)*1.25+0.5))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// SyncEventStream returns a channel that receives a SyncEvent after every
// subsequent ProcessFrame call. It is restartable: each call opens a
// fresh subscriber channel, independent of any previously returned one.
// Broadcasts are non-blocking; a subscriber that falls behind simply
// misses frames rather than stalling ProcessFrame.
func (s *Scheduler) SyncEventStream() <-chan SyncEvent {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	ch := make(chan SyncEvent, 16)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch
}

func (s *Scheduler) broadcastSync(evt SyncEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
