package status

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateValid(t *testing.T) {
	for _, s := range []State{StateConnecting, StateConnected, StateDisconnected, StateError} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, State("sleeping").Valid())
}

func TestHubPublish(t *testing.T) {
	hub := NewHub(4)

	first, unsubFirst := hub.Subscribe()
	second, unsubSecond := hub.Subscribe()
	defer unsubSecond()
	require.Equal(t, 2, hub.Subscribers())

	hub.Publish(NewEvent("Deluge", StateConnected, "connected"))

	got := <-first
	assert.Equal(t, "Deluge", got.Client)
	assert.Equal(t, StateConnected, got.State)
	assert.False(t, got.At.IsZero())

	got = <-second
	assert.Equal(t, StateConnected, got.State)

	unsubFirst()
	unsubFirst()
	assert.Equal(t, 1, hub.Subscribers())

	_, open := <-first
	assert.False(t, open, "channel should be closed after unsubscribe")
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub(1)
	ch, unsub := hub.Subscribe()
	defer unsub()

	hub.Publish(NewEvent("a", StateConnecting, "one"))
	hub.Publish(NewEvent("a", StateConnected, "two"))

	got := <-ch
	assert.Equal(t, "one", got.Message)
	assert.Len(t, ch, 0)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	p.Publish(NewEvent("uTorrent", StateError, "login failed"))

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"client":"uTorrent"`)
	assert.Contains(t, buf.String(), "login failed")
}

func TestMulti(t *testing.T) {
	var seen []string
	a := PublisherFunc(func(e Event) { seen = append(seen, "a:"+e.Message) })
	b := PublisherFunc(func(e Event) { seen = append(seen, "b:"+e.Message) })

	Multi(a, nil, b).Publish(NewEvent("x", StateDisconnected, "bye"))

	assert.Equal(t, []string{"a:bye", "b:bye"}, seen)
}
