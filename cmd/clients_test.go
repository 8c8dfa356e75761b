package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/arrdeck/status"
)

func TestConnectDurations(t *testing.T) {
	hub := status.NewHub(8)
	events, unsubscribe := hub.Subscribe()
	pub := status.Multi(status.Nop, hub)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pub.Publish(status.Event{Client: "qb", State: status.StateConnecting, At: start})
	pub.Publish(status.Event{Client: "deluge", State: status.StateConnecting, At: start})
	pub.Publish(status.Event{Client: "qb", State: status.StateConnected, At: start.Add(120 * time.Millisecond)})
	pub.Publish(status.Event{Client: "deluge", State: status.StateError, At: start.Add(2 * time.Second)})
	pub.Publish(status.Event{Client: "orphan", State: status.StateConnected, At: start})
	unsubscribe()

	got := connectDurations(events)
	assert.Equal(t, map[string]time.Duration{
		"qb":     120 * time.Millisecond,
		"deluge": 2 * time.Second,
	}, got)
}
