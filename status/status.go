// Package status carries torrent client connection-state changes to whoever is
// listening. The transport that ultimately delivers events (SSE, websockets, a
// UI toast) lives outside this package; it only has to implement Publisher or
// subscribe to a Hub.
package status

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is one of the enumerated connection states.
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateConnecting, StateConnected, StateDisconnected, StateError:
		return true
	}
	return false
}

// Event announces a state change for a named client.
type Event struct {
	Client  string    `json:"client"`
	State   State     `json:"state"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Publisher receives status events.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

// Publish calls f(e).
func (f PublisherFunc) Publish(e Event) {
	f(e)
}

// Nop discards every event.
var Nop Publisher = PublisherFunc(func(Event) {})

// NewEvent stamps an event with the current time.
func NewEvent(client string, state State, message string) Event {
	return Event{
		Client:  client,
		State:   state,
		Message: message,
		At:      time.Now(),
	}
}

// LogPublisher writes events to a zerolog logger.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event; errors are logged at warn level.
func (p *LogPublisher) Publish(e Event) {
	ev := p.logger.Info()
	if e.State == StateError {
		ev = p.logger.Warn()
	}
	ev.Str("client", e.Client).
		Str("state", string(e.State)).
		Msg(e.Message)
}

// Hub fans events out to subscribers. Slow subscribers drop events rather than
// block the publisher.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
	buffer int
}

// NewHub creates a hub whose subscriber channels hold up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe returns a channel of events and a function that unsubscribes and
// closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber that has room.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Multi publishes to several publishers in order.
func Multi(publishers ...Publisher) Publisher {
	return PublisherFunc(func(e Event) {
		for _, p := range publishers {
			if p != nil {
				p.Publish(e)
			}
		}
	})
}
