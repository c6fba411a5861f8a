// Package eventbus is the in-process publish/subscribe hub connecting the
// terminal engines to their downstream consumers.
package eventbus

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
)

// ErrBusDisposed is returned by Emit after Dispose; emitting on a disposed
// bus is a programming error, never silently ignored.
var ErrBusDisposed = errors.New("eventbus: emit on disposed bus")

// Handler consumes one delivered event.
type Handler func(domain.Event)

// Meta carries the envelope fields of an emission.
type Meta struct {
	TenantID      string
	FacilityID    string
	Source        string
	CorrelationID string
}

// Emission is one entry of an EmitBatch call.
type Emission struct {
	Type    string
	Payload any
	Meta    Meta
}

// HistoryFilter narrows the events returned by History.
type HistoryFilter struct {
	// Pattern is matched with the same rules as subscriptions ("" matches all).
	Pattern    string
	FacilityID string
	Since      time.Time
	Limit      int
}

type subscription struct {
	id       int
	pattern  string
	handler  Handler
	once     bool
	async    bool
	removed  atomic.Bool
	dispatch dispatcher
}

// Bus delivers events synchronously on the emitting call stack by default;
// subscribers registered with Async are fed through a bounded queue and a
// dedicated dispatch goroutine instead. Delivery order per subscriber always
// matches emission order.
type Bus struct {
	mu       sync.Mutex
	clock    clock.Clock
	log      *slog.Logger
	subs     []*subscription
	nextID   int
	disposed bool

	historyOn    bool
	historyLimit int
	history      []domain.Event

	asyncBuffer int
	inline      inlineDispatcher
	queued      *queueDispatcher
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock injects the time source.
func WithClock(c clock.Clock) Option {
	return func(b *Bus) { b.clock = c }
}

// WithLogger injects the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// WithHistory enables the in-memory event journal, keeping at most limit
// events (0 means unbounded).
func WithHistory(limit int) Option {
	return func(b *Bus) {
		b.historyOn = true
		b.historyLimit = limit
	}
}

// WithAsyncBuffer sizes the queue shared by async subscribers.
func WithAsyncBuffer(n int) Option {
	return func(b *Bus) { b.asyncBuffer = n }
}

// New constructs a Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		clock:       clock.NewSystem(),
		log:         slog.Default(),
		asyncBuffer: 256,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.inline = inlineDispatcher{log: b.log}
	b.queued = newQueueDispatcher(b.asyncBuffer, b.log)
	return b
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscription)

// Async defers delivery to the dispatch loop instead of running the handler
// inline on the emitting call stack.
func Async() SubscribeOption {
	return func(s *subscription) { s.async = true }
}

// Subscribe registers a handler for every event matching pattern. The
// returned function unsubscribes and is safe to call more than once.
func (b *Bus) Subscribe(pattern string, h Handler, opts ...SubscribeOption) func() {
	return b.subscribe(pattern, h, false, opts...)
}

// Once registers a handler that auto-unsubscribes after its first matching
// delivery.
func (b *Bus) Once(pattern string, h Handler, opts ...SubscribeOption) func() {
	return b.subscribe(pattern, h, true, opts...)
}

func (b *Bus) subscribe(pattern string, h Handler, once bool, opts ...SubscribeOption) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{
		id:       b.nextID,
		pattern:  pattern,
		handler:  h,
		once:     once,
		dispatch: b.inline,
	}
	for _, opt := range opts {
		opt(sub)
	}
	if sub.async {
		sub.dispatch = b.queued
	}
	if b.disposed {
		// Subscriptions on a disposed bus are inert.
		sub.removed.Store(true)
		return func() {}
	}
	b.subs = append(b.subs, sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.remove(sub)
	}
}

// remove drops a subscription; idempotent. Caller holds b.mu.
func (b *Bus) remove(sub *subscription) {
	if sub.removed.Load() {
		return
	}
	sub.removed.Store(true)
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit constructs an event and delivers it to matching subscribers before
// returning (async subscribers excepted). Nested emits from handlers are
// allowed.
func (b *Bus) Emit(eventType string, payload any, meta Meta) (domain.Event, error) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return domain.Event{}, ErrBusDisposed
	}

	event := domain.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Payload:       payload,
		Timestamp:     b.clock.Now(),
		Severity:      domain.SeverityFor(eventType),
		Source:        meta.Source,
		TenantID:      meta.TenantID,
		FacilityID:    meta.FacilityID,
		CorrelationID: meta.CorrelationID,
	}
	if event.CorrelationID == "" {
		event.CorrelationID = NewCorrelationID()
	}

	if b.historyOn {
		b.history = append(b.history, event)
		if b.historyLimit > 0 && len(b.history) > b.historyLimit {
			b.history = b.history[len(b.history)-b.historyLimit:]
		}
	}

	// Snapshot matches under the lock; once-subscriptions are consumed here
	// so a second emission cannot reach them.
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if domain.MatchesPattern(eventType, sub.pattern) {
			matched = append(matched, sub)
		}
	}
	for _, sub := range matched {
		if sub.once {
			b.remove(sub)
		}
	}
	b.mu.Unlock()

	// Deliver outside the lock so handlers may subscribe, unsubscribe or
	// emit without deadlocking.
	for _, sub := range matched {
		sub.dispatch.deliver(sub, event)
	}

	return event, nil
}

// EmitBatch emits events preserving order. There is no atomicity across the
// batch: events already emitted stay delivered when a later one fails.
func (b *Bus) EmitBatch(batch []Emission) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(batch))
	for _, e := range batch {
		event, err := b.Emit(e.Type, e.Payload, e.Meta)
		if err != nil {
			return out, err
		}
		out = append(out, event)
	}
	return out, nil
}

// History returns journaled events in emission order. When history is
// disabled it returns an empty slice, never an error.
func (b *Bus) History(filter HistoryFilter) []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.historyOn {
		return nil
	}
	out := make([]domain.Event, 0, len(b.history))
	for _, e := range b.history {
		if filter.Pattern != "" && !domain.MatchesPattern(e.Type, filter.Pattern) {
			continue
		}
		if filter.FacilityID != "" && e.FacilityID != filter.FacilityID {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}

// Dispose tears the bus down: Emit fails afterwards and every subscription
// becomes inert. Queued async deliveries are drained.
func (b *Bus) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	for _, sub := range b.subs {
		sub.removed.Store(true)
	}
	b.subs = nil
	b.mu.Unlock()

	b.queued.close()
}

// NewCorrelationID returns a fresh correlation id for tagging a causally
// related chain of events.
func NewCorrelationID() string {
	return uuid.NewString()
}
