package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
)

// Bridge subscribes the hub to the terminal event bus and broadcasts every
// event to its facility topic and to the firehose topic. Delivery is async
// so slow stream clients never block an engine transition. Returns the
// unsubscribe function.
func Bridge(bus *eventbus.Bus, hub *Hub, log *slog.Logger) func() {
	return bus.Subscribe("*", func(e domain.Event) {
		payload, err := json.Marshal(e)
		if err != nil {
			log.Error("encode event for stream failed", "type", e.Type, "error", err)
			return
		}
		hub.Broadcast("", payload)
		if e.FacilityID != "" {
			hub.Broadcast(e.FacilityID, payload)
		}
	}, eventbus.Async())
}
