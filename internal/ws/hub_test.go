package ws

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
)

type testSubscriber struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
	closed   bool
}

func (s *testSubscriber) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return io.EOF
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *testSubscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *testSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestHubBroadcastByFacility(t *testing.T) {
	hub := NewHub()

	firehose := &testSubscriber{}
	facilityA := &testSubscriber{}
	facilityB := &testSubscriber{}
	hub.Register("", firehose)
	hub.Register("fac-a", facilityA)
	hub.Register("fac-b", facilityB)

	hub.Broadcast("fac-a", []byte("a1"))
	hub.Broadcast("", []byte("all"))

	waitFor(t, func() bool { return facilityA.count() == 1 && firehose.count() == 1 })
	if facilityB.count() != 0 {
		t.Fatalf("facility B received %d payloads", facilityB.count())
	}
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	hub := NewHub()

	failing := &testSubscriber{fail: true}
	healthy := &testSubscriber{}
	hub.Register("fac-a", failing)
	hub.Register("fac-a", healthy)

	hub.Broadcast("fac-a", []byte("one"))
	waitFor(t, func() bool { return healthy.count() == 1 })

	failing.mu.Lock()
	closed := failing.closed
	failing.mu.Unlock()
	if !closed {
		t.Fatal("failing subscriber was not closed")
	}

	hub.Broadcast("fac-a", []byte("two"))
	waitFor(t, func() bool { return healthy.count() == 2 })
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()

	sub := &testSubscriber{}
	hub.Register("fac-a", sub)
	hub.Unregister("fac-a", sub)
	hub.Broadcast("fac-a", []byte("late"))

	// Give the hub loop a beat; nothing should arrive.
	time.Sleep(20 * time.Millisecond)
	if sub.count() != 0 {
		t.Fatalf("unregistered subscriber received %d payloads", sub.count())
	}
}

func TestSSEClientFraming(t *testing.T) {
	var buf bytes.Buffer
	client := NewSSEClient(&buf, nopFlusher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := client.Send([]byte(`{"type":"container.grounded"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := client.Send([]byte(`{"type":"container.picked"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := client.Heartbeat(); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "id: 1\ndata: {\"type\":\"container.grounded\"}\n\n") {
		t.Fatalf("first frame missing or malformed:\n%s", out)
	}
	if !strings.Contains(out, "id: 2\n") {
		t.Fatalf("sequence id not incremented:\n%s", out)
	}
	if !strings.Contains(out, ": ping\n\n") {
		t.Fatalf("heartbeat comment missing:\n%s", out)
	}

	client.Close()
	if err := client.Send([]byte("x")); err == nil {
		t.Fatal("expected send on closed client to fail")
	}
}

type nopFlusher struct{}

func (nopFlusher) Flush() {}

func TestBridgeForwardsEventsToHub(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(eventbus.WithLogger(log))
	defer bus.Dispose()

	hub := NewHub()
	firehose := &testSubscriber{}
	facility := &testSubscriber{}
	hub.Register("", firehose)
	hub.Register("fac-a", facility)

	off := Bridge(bus, hub, log)
	defer off()

	bus.Emit(domain.EventContainerGrounded, nil, eventbus.Meta{FacilityID: "fac-a"})
	bus.Emit(domain.EventContainerPicked, nil, eventbus.Meta{FacilityID: "fac-b"})

	waitFor(t, func() bool { return firehose.count() == 2 && facility.count() == 1 })

	var ev domain.Event
	facility.mu.Lock()
	payload := facility.payloads[0]
	facility.mu.Unlock()
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("decode broadcast payload: %v", err)
	}
	if ev.Type != domain.EventContainerGrounded || ev.FacilityID != "fac-a" {
		t.Fatalf("broadcast event = %+v", ev)
	}
}
