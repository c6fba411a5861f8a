// Package ws fans the terminal event stream out to websocket and SSE
// clients, grouped by facility.
package ws

import "sync"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by facility ID. The empty facility ID is
// the firehose topic receiving every event.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples payload with facility identifier.
type message struct {
	facilityID string
	payload    []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	facilityID string
	client     Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.facilityID]; !ok {
				h.clients[sub.facilityID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.facilityID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.facilityID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.facilityID)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.facilityID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.facilityID)
				}
			}
		}
	}
}

// Register adds a client to a facility stream. An empty facilityID
// subscribes to every facility.
func (h *Hub) Register(facilityID string, client Subscriber) {
	h.register <- subscription{facilityID: facilityID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(facilityID string, client Subscriber) {
	h.unreg <- subscription{facilityID: facilityID, client: client}
}

// Broadcast sends payload to all clients of a facility stream.
func (h *Hub) Broadcast(facilityID string, payload []byte) {
	h.broadcast <- message{facilityID: facilityID, payload: payload}
}
