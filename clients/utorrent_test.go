package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
)

type fakeUTorrent struct {
	*httptest.Server

	mu      sync.Mutex
	token   string
	fetches int
}

func (f *fakeUTorrent) rotate(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeUTorrent) tokenFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func uTorrentServer(t *testing.T) *fakeUTorrent {
	t.Helper()
	f := &fakeUTorrent{token: "tok-1"}

	mux := http.NewServeMux()
	mux.HandleFunc("/gui/token.html", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.fetches++
		token := f.token
		f.mu.Unlock()
		_, _ = w.Write([]byte(`<html><div id='token' style='display:none;'>` + token + `</div></html>`))
	})
	mux.HandleFunc("/gui/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		token := f.token
		f.mu.Unlock()
		if r.URL.Query().Get("token") != token {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid request"))
			return
		}
		q := r.URL.Query()
		switch {
		case q.Get("list") == "1":
			_, _ = w.Write([]byte(`{"build":44994,"torrents":[
				["C12FE1C06BBA254A9DC9F519B335AA7C1367A88A",201,"Some.Release",4096,1000,0],
				["bad",1,"Broken",1,0,0]
			]}`))
		case q.Get("action") == "add-url":
			assert.Equal(t, testMagnet, q.Get("s"))
			_, _ = w.Write([]byte(`{"build":44994}`))
		case q.Get("action") == "removedata":
			assert.Equal(t, testHash, q.Get("hash"))
			_, _ = w.Write([]byte(`{"build":44994}`))
		default:
			_, _ = w.Write([]byte(`{"error":"unsupported"}`))
		}
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func TestUTorrent(t *testing.T) {
	server := uTorrentServer(t)

	c, err := New(config.ClientConfig{
		Type:     "utorrent",
		URL:      server.URL,
		Username: "admin",
		Password: "secret",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	assert.Equal(t, 1, server.tokenFetches())

	hash, err := c.AddMagnet(ctx, testMagnet)
	require.NoError(t, err)
	assert.Equal(t, magnet.InfoHash(testHash), hash)

	torrents, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, torrents, 1, "malformed rows are skipped")
	assert.Equal(t, "Some.Release", torrents[0].Name)
	assert.Equal(t, int64(4096), torrents[0].Size)
	assert.Equal(t, 1.0, torrents[0].Progress)
	assert.Equal(t, "seeding", torrents[0].State)

	require.NoError(t, c.Remove(ctx, hash, true))
	assert.Equal(t, 1, server.tokenFetches(), "token is reused")

	server.rotate("tok-2")
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, server.tokenFetches(), "stale token is refreshed once")
}

func TestUTorrentWebUITrimsGuiSuffix(t *testing.T) {
	server := uTorrentServer(t)

	c, err := New(config.ClientConfig{
		Type:     "utorrentwebui",
		URL:      server.URL + "/gui/",
		Username: "admin",
		Password: "secret",
	})
	require.NoError(t, err)
	require.NoError(t, c.Connect(context.Background()))
}

func TestUTorrentUnauthorized(t *testing.T) {
	server := uTorrentServer(t)

	c, err := New(config.ClientConfig{Type: "utorrent", URL: server.URL, Username: "admin", Password: "nope"})
	require.NoError(t, err)
	require.ErrorIs(t, c.Connect(context.Background()), ErrAuthFailed)
}

func TestUTorrentState(t *testing.T) {
	assert.Equal(t, "error", uTorrentState(utStarted|utError, 0.2))
	assert.Equal(t, "paused", uTorrentState(utStarted|utPaused, 0.2))
	assert.Equal(t, "downloading", uTorrentState(utStarted, 0.2))
	assert.Equal(t, "seeding", uTorrentState(utStarted, 1))
	assert.Equal(t, "queued", uTorrentState(utQueued, 0))
	assert.Equal(t, "finished", uTorrentState(0, 1))
	assert.Equal(t, "stopped", uTorrentState(0, 0.1))
}
