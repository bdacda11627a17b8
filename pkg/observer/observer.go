package observer

import (
	"context"
	"time"

	"github.com/avnodegraph/core/pkg/types"
)

// EventType identifies the stage of an evaluation pass an Event reports on.
type EventType string

const (
	// Pass-level events.
	EventPassStart EventType = "pass_start"
	EventPassEnd   EventType = "pass_end"

	// Node-level events.
	EventNodeStart   EventType = "node_start"
	EventNodeEnd     EventType = "node_end"
	EventNodeSuccess EventType = "node_success"
	EventNodeFailure EventType = "node_failure"

	// Scheduler frame-level events (C5).
	EventFrameProcessed EventType = "frame_processed"
	EventQueueBackpressure EventType = "queue_backpressure"
)

// Status is the outcome of a pass or node event.
type Status string

const (
	StatusStarted Status = "started"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Event carries everything an observer needs about one evaluation-pass or
// per-node occurrence. Node-specific fields are zero-valued for pass-level events.
type Event struct {
	Type      EventType
	Status    Status
	Timestamp time.Time

	// ExecutionID correlates every event within one evaluation pass
	// (pkg/evaluator assigns it via google/uuid).
	ExecutionID string

	NodeID types.NodeID

	StartTime   time.Time
	ElapsedTime time.Duration

	Result types.Result
	Error  error

	Metadata map[string]interface{}
}

// Observer receives notifications about evaluation-pass events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Logger is the structured-logging interface observers may delegate to,
// matching the level-per-method shape pkg/logging implements over slog.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
