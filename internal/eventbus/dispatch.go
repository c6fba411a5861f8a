package eventbus

import (
	"log/slog"

	"github.com/icdstack/terminal/internal/domain"
)

// dispatcher decides how a matched event reaches a subscriber: inline on the
// emitting goroutine, or queued to a dedicated dispatch loop.
type dispatcher interface {
	deliver(sub *subscription, event domain.Event)
	close()
}

type inlineDispatcher struct {
	log *slog.Logger
}

func (d inlineDispatcher) deliver(sub *subscription, event domain.Event) {
	invoke(sub, event, d.log)
}

func (d inlineDispatcher) close() {}

type delivery struct {
	sub   *subscription
	event domain.Event
}

// queueDispatcher serializes deliveries through a bounded channel and a
// single goroutine, so each async subscriber still observes emission order.
type queueDispatcher struct {
	queue chan delivery
	done  chan struct{}
	log   *slog.Logger
}

func newQueueDispatcher(buffer int, log *slog.Logger) *queueDispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &queueDispatcher{
		queue: make(chan delivery, buffer),
		done:  make(chan struct{}),
		log:   log,
	}
	go d.run()
	return d
}

func (d *queueDispatcher) run() {
	for {
		select {
		case item := <-d.queue:
			invoke(item.sub, item.event, d.log)
		case <-d.done:
			// Drain whatever is already queued, then stop.
			for {
				select {
				case item := <-d.queue:
					invoke(item.sub, item.event, d.log)
				default:
					return
				}
			}
		}
	}
}

func (d *queueDispatcher) deliver(sub *subscription, event domain.Event) {
	select {
	case d.queue <- delivery{sub: sub, event: event}:
	case <-d.done:
	default:
		// Queue full: delivery is best-effort, drop rather than block the
		// emitting call stack.
		d.log.Warn("async event queue full, dropping delivery",
			"type", event.Type, "pattern", sub.pattern)
	}
}

func (d *queueDispatcher) close() {
	close(d.done)
}

// invoke runs a handler, containing panics so one faulty subscriber cannot
// abort delivery to the rest. Deliveries still queued for an unsubscribed
// handler are skipped.
func invoke(sub *subscription, event domain.Event, log *slog.Logger) {
	if sub.removed.Load() && !sub.once {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panicked", "type", event.Type, "pattern", sub.pattern, "panic", r)
		}
	}()
	sub.handler(event)
}
