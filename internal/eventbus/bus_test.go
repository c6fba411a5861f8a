package eventbus

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
)

func testBus(opts ...Option) *Bus {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))),
	}
	return New(append(base, opts...)...)
}

func TestEmitDeliversInOrder(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var got []string
	bus.Subscribe("container.*", func(e domain.Event) {
		got = append(got, e.Type)
	})

	types := []string{
		domain.EventContainerGatedIn,
		domain.EventContainerGrounded,
		domain.EventContainerPicked,
		domain.EventContainerGatedOut,
	}
	for _, tp := range types {
		if _, err := bus.Emit(tp, nil, Meta{}); err != nil {
			t.Fatalf("emit %s: %v", tp, err)
		}
	}

	if len(got) != len(types) {
		t.Fatalf("expected %d deliveries, got %d", len(types), len(got))
	}
	for i, tp := range types {
		if got[i] != tp {
			t.Errorf("delivery %d = %s, want %s", i, got[i], tp)
		}
	}
}

func TestEmitSkipsNonMatching(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var calls int
	bus.Subscribe("yard.*", func(domain.Event) { calls++ })

	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	bus.Emit(domain.EventWorkOrderCreated, nil, Meta{})

	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestEmitFillsEnvelope(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bus := testBus()
	defer bus.Dispose()

	ev, err := bus.Emit(domain.EventCapacityCritical, nil, Meta{
		TenantID:   "t-1",
		FacilityID: "f-1",
		Source:     "test",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if ev.ID == "" {
		t.Error("expected event id to be set")
	}
	if !ev.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, now)
	}
	if ev.Severity != domain.SeverityCritical {
		t.Errorf("severity = %s, want critical", ev.Severity)
	}
	if ev.CorrelationID == "" {
		t.Error("expected a correlation id to be generated")
	}

	ev2, _ := bus.Emit(domain.EventCapacityWarning, nil, Meta{CorrelationID: "corr-1"})
	if ev2.CorrelationID != "corr-1" {
		t.Errorf("correlation id = %s, want corr-1", ev2.CorrelationID)
	}
}

func TestOnceDeliversExactlyOnce(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var calls int
	bus.Once(domain.EventContainerGrounded, func(domain.Event) { calls++ })

	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	bus.Emit(domain.EventContainerGrounded, nil, Meta{})

	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var calls int
	off := bus.Subscribe("*", func(domain.Event) { calls++ })

	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	off()
	off()
	bus.Emit(domain.EventContainerGrounded, nil, Meta{})

	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestHandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var calls int
	bus.Subscribe("*", func(domain.Event) { panic("boom") })
	bus.Subscribe("*", func(domain.Event) { calls++ })

	if _, err := bus.Emit(domain.EventContainerGrounded, nil, Meta{}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected second subscriber to run, calls = %d", calls)
	}
}

func TestNestedEmitFromHandler(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var got []string
	bus.Subscribe("yard.*", func(e domain.Event) {
		got = append(got, e.Type)
	})
	bus.Subscribe(domain.EventContainerGrounded, func(domain.Event) {
		bus.Emit(domain.EventSlotOccupied, nil, Meta{})
	})

	bus.Emit(domain.EventContainerGrounded, nil, Meta{})

	if len(got) != 1 || got[0] != domain.EventSlotOccupied {
		t.Fatalf("expected nested slot_occupied delivery, got %v", got)
	}
}

func TestSubscribeFromHandlerNotCalledForCurrentEvent(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var lateCalls int
	bus.Subscribe(domain.EventContainerGrounded, func(domain.Event) {
		bus.Subscribe(domain.EventContainerGrounded, func(domain.Event) { lateCalls++ })
	})

	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	if lateCalls != 0 {
		t.Fatalf("subscriber added mid-emit saw the triggering event")
	}

	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	if lateCalls != 1 {
		t.Fatalf("expected late subscriber to see the next event, calls = %d", lateCalls)
	}
}

func TestEmitBatchPreservesOrder(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	var got []string
	bus.Subscribe("*", func(e domain.Event) { got = append(got, e.Type) })

	events, err := bus.EmitBatch([]Emission{
		{Type: domain.EventContainerGatedIn},
		{Type: domain.EventContainerGrounded},
		{Type: domain.EventSlotOccupied},
	})
	if err != nil {
		t.Fatalf("emit batch: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []string{domain.EventContainerGatedIn, domain.EventContainerGrounded, domain.EventSlotOccupied}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestHistory(t *testing.T) {
	bus := testBus(WithHistory(100))
	defer bus.Dispose()

	bus.Emit(domain.EventContainerGatedIn, nil, Meta{FacilityID: "f-1"})
	bus.Emit(domain.EventContainerGrounded, nil, Meta{FacilityID: "f-1"})
	bus.Emit(domain.EventWorkOrderCreated, nil, Meta{FacilityID: "f-2"})

	all := bus.History(HistoryFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 journaled events, got %d", len(all))
	}

	containers := bus.History(HistoryFilter{Pattern: "container.*"})
	if len(containers) != 2 {
		t.Fatalf("expected 2 container events, got %d", len(containers))
	}

	f2 := bus.History(HistoryFilter{FacilityID: "f-2"})
	if len(f2) != 1 || f2[0].Type != domain.EventWorkOrderCreated {
		t.Fatalf("facility filter returned %v", f2)
	}

	limited := bus.History(HistoryFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("expected limit 1, got %d", len(limited))
	}
}

func TestHistoryTrimsToLimit(t *testing.T) {
	bus := testBus(WithHistory(2))
	defer bus.Dispose()

	bus.Emit(domain.EventContainerGatedIn, nil, Meta{})
	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	bus.Emit(domain.EventContainerPicked, nil, Meta{})

	got := bus.History(HistoryFilter{})
	if len(got) != 2 {
		t.Fatalf("expected history capped at 2, got %d", len(got))
	}
	if got[0].Type != domain.EventContainerGrounded || got[1].Type != domain.EventContainerPicked {
		t.Fatalf("expected oldest event evicted, got %s, %s", got[0].Type, got[1].Type)
	}
}

func TestHistoryDisabled(t *testing.T) {
	bus := testBus()
	defer bus.Dispose()

	bus.Emit(domain.EventContainerGatedIn, nil, Meta{})
	if got := bus.History(HistoryFilter{}); len(got) != 0 {
		t.Fatalf("expected empty history when disabled, got %d", len(got))
	}
}

func TestDispose(t *testing.T) {
	bus := testBus()

	var calls int
	bus.Subscribe("*", func(domain.Event) { calls++ })

	bus.Dispose()
	bus.Dispose()

	if _, err := bus.Emit(domain.EventContainerGatedIn, nil, Meta{}); err != ErrBusDisposed {
		t.Fatalf("expected ErrBusDisposed, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("subscriber ran after dispose")
	}

	// Subscriptions taken on a disposed bus are inert and unsubscribing
	// them is a no-op.
	off := bus.Subscribe("*", func(domain.Event) { calls++ })
	off()
}

func TestAsyncDeliveryPreservesOrder(t *testing.T) {
	bus := testBus(WithAsyncBuffer(16))
	defer bus.Dispose()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	bus.Subscribe("container.*", func(e domain.Event) {
		mu.Lock()
		got = append(got, e.Type)
		n := len(got)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
	}, Async())

	bus.Emit(domain.EventContainerGatedIn, nil, Meta{})
	bus.Emit(domain.EventContainerGrounded, nil, Meta{})
	bus.Emit(domain.EventContainerPicked, nil, Meta{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async deliveries")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{domain.EventContainerGatedIn, domain.EventContainerGrounded, domain.EventContainerPicked}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("async delivery %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAsyncUnsubscribedHandlerSkipped(t *testing.T) {
	bus := testBus(WithAsyncBuffer(16))
	defer bus.Dispose()

	block := make(chan struct{})
	var mu sync.Mutex
	var calls int

	// First async subscriber blocks the dispatch loop so the second's
	// delivery is still queued when it unsubscribes.
	bus.Subscribe(domain.EventContainerGatedIn, func(domain.Event) { <-block }, Async())
	off := bus.Subscribe(domain.EventContainerGatedIn, func(domain.Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, Async())

	bus.Emit(domain.EventContainerGatedIn, nil, Meta{})
	off()
	close(block)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("unsubscribed async handler still ran %d time(s)", calls)
	}
}
