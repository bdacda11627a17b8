package observer

import (
	"context"
	"fmt"
)

// NoOpObserver ignores every event. Useful as a default when no observer
// is configured.
type NoOpObserver struct{}

func (o *NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// ConsoleObserver logs each event through a Logger, at a level chosen by
// event type.
type ConsoleObserver struct {
	logger Logger
}

// NewConsoleObserver builds a ConsoleObserver over the given logger.
func NewConsoleObserver(logger Logger) *ConsoleObserver {
	return &ConsoleObserver{logger: logger}
}

func (o *ConsoleObserver) OnEvent(ctx context.Context, event Event) {
	fields := map[string]interface{}{
		"type":         event.Type,
		"status":       event.Status,
		"execution_id": event.ExecutionID,
	}
	if event.NodeID != "" {
		fields["node_id"] = event.NodeID.String()
	}
	if event.ElapsedTime > 0 {
		fields["elapsed_time"] = event.ElapsedTime.String()
	}

	msg := fmt.Sprintf("[%s] %s", event.Type, event.Status)

	switch event.Type {
	case EventPassStart:
		o.logger.Info(msg, fields)
	case EventPassEnd:
		if event.Error != nil {
			fields["error"] = event.Error.Error()
			o.logger.Error(msg, fields)
		} else {
			o.logger.Info(msg, fields)
		}
	case EventNodeFailure:
		if event.Error != nil {
			fields["error"] = event.Error.Error()
		}
		o.logger.Warn(msg, fields)
	default:
		o.logger.Debug(msg, fields)
	}
}

// Manager fans one event out to every registered observer, each notified
// in its own goroutine so a slow or panicking observer cannot stall or
// abort an evaluation pass.
type Manager struct {
	observers []Observer
}

// NewManager builds an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// NewManagerWithObservers builds a Manager pre-seeded with observers.
func NewManagerWithObservers(observers ...Observer) *Manager {
	return &Manager{observers: observers}
}

// Register adds an observer. A nil observer is ignored.
func (m *Manager) Register(o Observer) {
	if o != nil {
		m.observers = append(m.observers, o)
	}
}

// Notify delivers event to every registered observer asynchronously.
func (m *Manager) Notify(ctx context.Context, event Event) {
	for _, o := range m.observers {
		obs := o
		go func() {
			defer func() { _ = recover() }()
			obs.OnEvent(ctx, event)
		}()
	}
}

// HasObservers reports whether any observer is registered.
func (m *Manager) HasObservers() bool {
	return len(m.observers) > 0
}

// Count returns the number of registered observers.
func (m *Manager) Count() int {
	return len(m.observers)
}
