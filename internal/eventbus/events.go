package eventbus

import (
	"context"
	"time"
)

// EventType represents the type of an event
type EventType string

// Pipeline event types. The payload of every pipeline event is the run ID.
const (
	EventAskStarted  EventType = "ask_started"
	EventAskFinished EventType = "ask_finished"

	EventPromptBuilt EventType = "prompt_built"

	EventCompletionCacheHit EventType = "completion_cache_hit"
	EventCompletionReceived EventType = "completion_received"
	EventCompletionFailed   EventType = "completion_failed"

	EventCodeExtracted EventType = "code_extracted"

	EventExecutionSucceeded EventType = "execution_succeeded"
	EventExecutionFailed    EventType = "execution_failed"
	EventPlotRendered       EventType = "plot_rendered"

	EventBatchJobStarted   EventType = "batch_job_started"
	EventBatchJobSucceeded EventType = "batch_job_succeeded"
	EventBatchJobFailed    EventType = "batch_job_failed"
)

// EventHandler is a function that handles events
type EventHandler func(context.Context, Event) error

// Event represents something that has happened within the system
type Event interface {
	Type() EventType
	Payload() interface{}
	Metadata() map[string]interface{}
	// Timestamp is in Unix nanoseconds.
	Timestamp() int64
	Source() string
}

// EventBus is the central event dispatch system
type EventBus interface {
	// Publish queues an event for every matching subscriber.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler for specific event types and returns
	// the subscription ID.
	Subscribe(eventTypes []EventType, handler EventHandler) (string, error)

	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler EventHandler) (string, error)

	Unsubscribe(subscriptionID string) error

	// Close stops dispatch after the queued events are handled.
	Close() error
}

// BaseEvent is a simple implementation of the Event interface
type BaseEvent struct {
	eventType  EventType
	payload    interface{}
	metadata   map[string]interface{}
	timestamp  int64
	sourceInfo string
}

// NewEvent creates a new BaseEvent
func NewEvent(eventType EventType, payload interface{}, source string, metadata map[string]interface{}) *BaseEvent {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &BaseEvent{
		eventType:  eventType,
		payload:    payload,
		metadata:   metadata,
		timestamp:  time.Now().UnixNano(),
		sourceInfo: source,
	}
}

func (e *BaseEvent) Type() EventType                  { return e.eventType }
func (e *BaseEvent) Payload() interface{}             { return e.payload }
func (e *BaseEvent) Metadata() map[string]interface{} { return e.metadata }
func (e *BaseEvent) Timestamp() int64                 { return e.timestamp }
func (e *BaseEvent) Source() string                   { return e.sourceInfo }

// WithMetadata adds or updates metadata and returns the same event.
func (e *BaseEvent) WithMetadata(key string, value interface{}) *BaseEvent {
	e.metadata[key] = value
	return e
}
