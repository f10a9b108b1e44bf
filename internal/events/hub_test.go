package events

import (
	"sync"
	"testing"
	"time"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()

	ch := hub.Subscribe(10, EventAcceptanceResult)

	hub.EmitAcceptance(EventAcceptanceResult, AcceptanceData{CycleID: "c1", State: "accepted"})

	select {
	case e := <-ch:
		if e.Type != EventAcceptanceResult {
			t.Errorf("expected EventAcceptanceResult, got %s", e.Type)
		}
		if e.Source != "acceptance" {
			t.Errorf("expected source acceptance, got %s", e.Source)
		}
		data, ok := e.Data.(AcceptanceData)
		if !ok {
			t.Fatal("expected AcceptanceData")
		}
		if data.State != "accepted" || data.CycleID != "c1" {
			t.Errorf("unexpected payload %+v", data)
		}
		if e.Timestamp.IsZero() {
			t.Error("timestamp should be filled in")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestHub_GlobalSubscription(t *testing.T) {
	hub := NewHub()

	ch := hub.Subscribe(10)

	hub.Publish(Event{Type: EventAcceptanceStarted, Source: "test"})
	hub.Publish(Event{Type: EventAcceptanceWaiting, Source: "test"})
	hub.Publish(Event{Type: EventAcceptanceResult, Source: "test"})

	received := 0
	for i := 0; i < 3; i++ {
		select {
		case <-ch:
			received++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if received != 3 {
		t.Errorf("expected 3 events, got %d", received)
	}
}

func TestHub_TypeFiltering(t *testing.T) {
	hub := NewHub()

	ch := hub.Subscribe(10, EventAcceptanceWaited, EventAcceptanceResult)

	hub.Publish(Event{Type: EventAcceptanceStarted, Source: "test"})
	hub.Publish(Event{Type: EventAcceptanceWaited, Source: "test"})
	hub.Publish(Event{Type: EventAcceptanceWaiting, Source: "test"})
	hub.Publish(Event{Type: EventAcceptanceResult, Source: "test"})

	if got := len(ch); got != 2 {
		t.Errorf("expected 2 events, got %d", got)
	}
}

func TestHub_NonBlocking(t *testing.T) {
	hub := NewHub()

	_ = hub.Subscribe(1, EventAcceptanceWaiting)

	for i := 0; i < 10; i++ {
		hub.Publish(Event{Type: EventAcceptanceWaiting, Source: "test"})
	}

	published, dropped := hub.Stats()
	if published != 10 {
		t.Errorf("expected 10 published, got %d", published)
	}
	if dropped != 9 {
		t.Errorf("expected 9 dropped, got %d", dropped)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()

	ch := hub.Subscribe(10, EventAcceptanceResult)
	global := hub.Subscribe(10)
	hub.Unsubscribe(ch)
	hub.Unsubscribe(global)

	hub.Publish(Event{Type: EventAcceptanceResult, Source: "test"})

	if len(ch) != 0 || len(global) != 0 {
		t.Error("unsubscribed channels should not receive events")
	}
}

func TestHub_ConcurrentPublish(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Publish(Event{Type: EventAcceptanceStarted, Source: "test"})
			}
		}()
	}
	wg.Wait()

	published, dropped := hub.Stats()
	if published != 500 {
		t.Errorf("expected 500 published, got %d", published)
	}
	if uint64(len(ch))+dropped != 500 {
		t.Errorf("delivered %d + dropped %d != 500", len(ch), dropped)
	}
}
