// Package eventbus provides event bus implementations
package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChannelEventBus is an implementation of EventBus using Go channels.
// Events are handled in publish order per worker; with more than one worker
// handlers may observe events out of order.
type ChannelEventBus struct {
	subscribers    map[EventType]map[string]EventHandler
	allSubscribers map[string]EventHandler
	eventChan      chan eventWithContext
	closed         bool
	closeMu        sync.RWMutex // guards closed and sends on eventChan
	wg             sync.WaitGroup
	mutex          sync.RWMutex // guards the subscriber maps
	logger         *zap.SugaredLogger

	bufferSize    int
	workerCount   int
	maxRetries    int
	retryInterval time.Duration
}

type eventWithContext struct {
	ctx   context.Context
	event Event
}

// ChannelEventBusOption configures the channel-based event bus
type ChannelEventBusOption func(*ChannelEventBus)

// WithBufferSize sets the event channel buffer size
func WithBufferSize(size int) ChannelEventBusOption {
	return func(eb *ChannelEventBus) {
		if size > 0 {
			eb.bufferSize = size
		}
	}
}

// WithWorkerCount sets the number of event processing workers
func WithWorkerCount(count int) ChannelEventBusOption {
	return func(eb *ChannelEventBus) {
		if count > 0 {
			eb.workerCount = count
		}
	}
}

// WithRetries configures the retry behavior for event handlers
func WithRetries(maxRetries int, retryInterval time.Duration) ChannelEventBusOption {
	return func(eb *ChannelEventBus) {
		eb.maxRetries = maxRetries
		eb.retryInterval = retryInterval
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(logger *zap.SugaredLogger) ChannelEventBusOption {
	return func(eb *ChannelEventBus) {
		if logger != nil {
			eb.logger = logger
		}
	}
}

// NewChannelEventBus creates a new channel-based event bus
func NewChannelEventBus(options ...ChannelEventBusOption) *ChannelEventBus {
	eb := &ChannelEventBus{
		subscribers:    make(map[EventType]map[string]EventHandler),
		allSubscribers: make(map[string]EventHandler),
		logger:         zap.NewNop().Sugar(),

		bufferSize:    100,
		workerCount:   1,
		maxRetries:    0,
		retryInterval: 100 * time.Millisecond,
	}
	for _, option := range options {
		option(eb)
	}

	eb.eventChan = make(chan eventWithContext, eb.bufferSize)
	for i := 0; i < eb.workerCount; i++ {
		eb.wg.Add(1)
		go eb.worker()
	}
	return eb
}

func (eb *ChannelEventBus) worker() {
	defer eb.wg.Done()
	for evt := range eb.eventChan {
		eb.processEvent(evt)
	}
}

func (eb *ChannelEventBus) processEvent(evt eventWithContext) {
	// Copy the handlers so they can subscribe or unsubscribe without deadlocking.
	eb.mutex.RLock()
	handlers := make([]EventHandler, 0, len(eb.allSubscribers)+len(eb.subscribers[evt.event.Type()]))
	for _, handler := range eb.subscribers[evt.event.Type()] {
		handlers = append(handlers, handler)
	}
	for _, handler := range eb.allSubscribers {
		handlers = append(handlers, handler)
	}
	eb.mutex.RUnlock()

	for _, handler := range handlers {
		eb.executeHandler(evt.ctx, evt.event, handler)
	}
}

func (eb *ChannelEventBus) executeHandler(ctx context.Context, event Event, handler EventHandler) {
	var err error
	for attempt := 0; attempt <= eb.maxRetries; attempt++ {
		if err = handler(ctx, event); err == nil {
			return
		}
		if attempt == eb.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(eb.retryInterval):
		}
	}
	eb.logger.Warnw("event handler failed", "event_type", event.Type(), "retries", eb.maxRetries, "error", err)
}

// Publish queues event. Handlers receive a context detached from ctx's
// cancellation so a finished call still gets its events delivered.
func (eb *ChannelEventBus) Publish(ctx context.Context, event Event) error {
	eb.closeMu.RLock()
	defer eb.closeMu.RUnlock()
	if eb.closed {
		return fmt.Errorf("event bus is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case eb.eventChan <- eventWithContext{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	}
}

// Subscribe registers a handler for specific event types
func (eb *ChannelEventBus) Subscribe(eventTypes []EventType, handler EventHandler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("handler cannot be nil")
	}
	if len(eventTypes) == 0 {
		return "", fmt.Errorf("at least one event type is required")
	}

	if eb.isClosed() {
		return "", fmt.Errorf("event bus is closed")
	}
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriptionID := uuid.New().String()
	for _, eventType := range eventTypes {
		if _, exists := eb.subscribers[eventType]; !exists {
			eb.subscribers[eventType] = make(map[string]EventHandler)
		}
		eb.subscribers[eventType][subscriptionID] = handler
	}
	return subscriptionID, nil
}

// SubscribeAll registers a handler for all event types
func (eb *ChannelEventBus) SubscribeAll(handler EventHandler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("handler cannot be nil")
	}

	if eb.isClosed() {
		return "", fmt.Errorf("event bus is closed")
	}
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriptionID := uuid.New().String()
	eb.allSubscribers[subscriptionID] = handler
	return subscriptionID, nil
}

// Unsubscribe removes a subscription by ID
func (eb *ChannelEventBus) Unsubscribe(subscriptionID string) error {
	if eb.isClosed() {
		return fmt.Errorf("event bus is closed")
	}
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	delete(eb.allSubscribers, subscriptionID)
	for _, subscribers := range eb.subscribers {
		delete(subscribers, subscriptionID)
	}
	return nil
}

// Close stops accepting events, drains the queue and waits for the workers.
func (eb *ChannelEventBus) Close() error {
	eb.closeMu.Lock()
	if eb.closed {
		eb.closeMu.Unlock()
		return nil
	}
	eb.closed = true
	close(eb.eventChan)
	eb.closeMu.Unlock()

	eb.wg.Wait()
	return nil
}

func (eb *ChannelEventBus) isClosed() bool {
	eb.closeMu.RLock()
	defer eb.closeMu.RUnlock()
	return eb.closed
}
