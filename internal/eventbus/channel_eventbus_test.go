package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestChannelEventBus_PublishAndSubscribe(t *testing.T) {
	eb := NewChannelEventBus(WithBufferSize(1), WithWorkerCount(1))
	defer eb.Close()

	received := make(chan Event, 1)
	_, err := eb.Subscribe([]EventType{EventPromptBuilt}, func(ctx context.Context, event Event) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	evt := NewEvent(EventPromptBuilt, "run-1", "test", nil).WithMetadata("prompt", "abc123")
	if err := eb.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Type() != EventPromptBuilt || got.Payload() != "run-1" {
			t.Errorf("unexpected event: %v %v", got.Type(), got.Payload())
		}
		if got.Metadata()["prompt"] != "abc123" {
			t.Errorf("expected metadata to be carried, got %v", got.Metadata())
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for event handler")
	}
}

func TestChannelEventBus_OnlyMatchingTypes(t *testing.T) {
	eb := NewChannelEventBus()

	var mu sync.Mutex
	var typed, all []EventType
	_, _ = eb.Subscribe([]EventType{EventExecutionFailed}, func(ctx context.Context, event Event) error {
		mu.Lock()
		defer mu.Unlock()
		typed = append(typed, event.Type())
		return nil
	})
	_, _ = eb.SubscribeAll(func(ctx context.Context, event Event) error {
		mu.Lock()
		defer mu.Unlock()
		all = append(all, event.Type())
		return nil
	})

	ctx := context.Background()
	_ = eb.Publish(ctx, NewEvent(EventAskStarted, "r", "test", nil))
	_ = eb.Publish(ctx, NewEvent(EventExecutionFailed, "r", "test", nil))
	_ = eb.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(typed) != 1 || typed[0] != EventExecutionFailed {
		t.Errorf("typed subscriber got %v", typed)
	}
	if len(all) != 2 || all[0] != EventAskStarted {
		t.Errorf("all subscriber got %v", all)
	}
}

func TestChannelEventBus_HandlerRetry(t *testing.T) {
	eb := NewChannelEventBus(WithRetries(2, 10*time.Millisecond))

	var mu sync.Mutex
	calls := 0
	_, err := eb.Subscribe([]EventType{EventExecutionFailed}, func(ctx context.Context, event Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := eb.Publish(context.Background(), NewEvent(EventExecutionFailed, nil, "test", nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	_ = eb.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestChannelEventBus_CancelledPublish(t *testing.T) {
	eb := NewChannelEventBus()
	defer eb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := eb.Publish(ctx, NewEvent(EventAskStarted, nil, "test", nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestChannelEventBus_Closed(t *testing.T) {
	eb := NewChannelEventBus()
	if err := eb.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := eb.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := eb.Publish(context.Background(), NewEvent(EventAskStarted, nil, "test", nil)); err == nil {
		t.Error("expected Publish to fail on a closed bus")
	}
	if _, err := eb.SubscribeAll(func(context.Context, Event) error { return nil }); err == nil {
		t.Error("expected SubscribeAll to fail on a closed bus")
	}
}

func TestChannelEventBus_Unsubscribe(t *testing.T) {
	eb := NewChannelEventBus()

	var mu sync.Mutex
	calls := 0
	id, _ := eb.SubscribeAll(func(ctx context.Context, event Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil
	})
	if err := eb.Unsubscribe(id); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}
	_ = eb.Publish(context.Background(), NewEvent(EventAskStarted, nil, "test", nil))
	_ = eb.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}
