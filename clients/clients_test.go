package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
	"github.com/s0up4200/arrdeck/status"
)

const (
	testHash   = "C12FE1C06BBA254A9DC9F519B335AA7C1367A88A"
	testMagnet = "magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a&dn=Some.Release"
)

func TestNewIdentities(t *testing.T) {
	tests := []struct {
		typ  string
		id   string
		name string
	}{
		{"qbittorrent", IDQBittorrent, "qBittorrent (pre4.1)"},
		{"qbittorrent41plus", IDQBittorrent41Plus, "qBittorrent 4.1+"},
		{"utorrent", IDUTorrent, "uTorrent"},
		{"utorrentwebui", IDUTorrentWebUI, "uTorrent Web"},
		{"Transmission", IDTransmission, "Transmission"},
		{"deluge", IDDeluge, "Deluge"},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c, err := New(config.ClientConfig{Type: tt.typ, URL: "http://localhost:1234"})
			require.NoError(t, err)
			assert.Equal(t, tt.id, c.ID())
			assert.Equal(t, tt.name, c.Name())
		})
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.ClientConfig{Type: "rtorrent"})
	require.ErrorIs(t, err, ErrUnknownClientType)

	_, err = NewAll([]config.ClientConfig{{Name: "ok", Type: "deluge"}, {Name: "bad", Type: "vuze"}})
	require.ErrorIs(t, err, ErrUnknownClientType)
	assert.Contains(t, err.Error(), "client bad")
}

func TestDetectQBittorrentID(t *testing.T) {
	cases := map[string]string{
		"v4.0.4":  IDQBittorrent,
		"3.3.16":  IDQBittorrent,
		"v4.1.0":  IDQBittorrent41Plus,
		"4.1":     IDQBittorrent41Plus,
		"v5.0.2":  IDQBittorrent41Plus,
		"garbage": IDQBittorrent41Plus,
	}
	for version, want := range cases {
		assert.Equal(t, want, DetectQBittorrentID(version), version)
	}
}

func TestMagnetLink(t *testing.T) {
	hash, link, err := magnetLink(testMagnet)
	require.NoError(t, err)
	assert.Equal(t, magnet.InfoHash(testHash), hash)
	assert.Equal(t, testMagnet, link)

	hash, link, err = magnetLink("c12fe1c06bba254a9dc9f519b335aa7c1367a88a")
	require.NoError(t, err)
	assert.Equal(t, magnet.InfoHash(testHash), hash)
	assert.Contains(t, link, "magnet:?xt=urn:btih:")

	_, _, err = magnetLink("magnet:?xt=urn:btih:YEX6DQDLXISUVHOJ6UM3GNNKPQJWPKEK")
	require.ErrorIs(t, err, ErrInvalidMagnet)
}

func TestAddMagnetRejectsInvalidBeforeNetwork(t *testing.T) {
	for _, typ := range config.ClientTypes {
		t.Run(typ, func(t *testing.T) {
			// Nothing listens on port 1; reaching the network would surface a different error.
			c, err := New(config.ClientConfig{Type: typ, URL: "http://127.0.0.1:1"})
			require.NoError(t, err)

			_, err = c.AddMagnet(context.Background(), "not a magnet")
			require.ErrorIs(t, err, ErrInvalidMagnet)
		})
	}
}

func TestRemoveRejectsInvalidHash(t *testing.T) {
	for _, typ := range config.ClientTypes {
		c, err := New(config.ClientConfig{Type: typ, URL: "http://127.0.0.1:1"})
		require.NoError(t, err)
		err = c.Remove(context.Background(), magnet.InfoHash("abc"), false)
		require.ErrorIs(t, err, magnet.ErrInvalidInfoHash, typ)
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{Client: "Deluge", StatusCode: 401, Message: "nope"}
	assert.True(t, err.IsUnauthorized())
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, "Deluge: API error (status 401): nope", err.Error())

	other := &APIError{Client: "Deluge", StatusCode: 500, Message: "boom"}
	assert.False(t, other.IsUnauthorized())
	assert.NotErrorIs(t, other, ErrAuthFailed)
}

// recorder collects published status events.
type recorder struct {
	events []status.Event
}

func (r *recorder) Publish(e status.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) states() []status.State {
	out := make([]status.State, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.State)
	}
	return out
}
