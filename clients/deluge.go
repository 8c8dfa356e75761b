package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
)

// deluge speaks the Deluge web UI JSON-RPC endpoint. Authentication sets a
// _session_id cookie held by the session's jar.
type deluge struct {
	*session
	seq      atomic.Int64
	loggedIn bool
}

func newDeluge(cfg config.ClientConfig, o options) *deluge {
	s := newSession(IDDeluge, "Deluge", cfg, o)
	if !strings.HasSuffix(s.baseURL, "/json") {
		s.baseURL += "/json"
	}
	return &deluge{session: s}
}

type delugeRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     int64  `json:"id"`
}

func (c *deluge) rpc(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(delugeRequest{Method: method, Params: params, ID: c.seq.Add(1)})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, request{method: http.MethodPost, body: body})
	if err != nil {
		return gjson.Result{}, err
	}
	if !ok(resp.status) {
		return gjson.Result{}, c.apiError(resp)
	}

	reply := gjson.ParseBytes(resp.body)
	if e := reply.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.Get("message").String()
		// Deluge reports an expired session as error code 1 "Not authenticated".
		if e.Get("code").Int() == 1 {
			return gjson.Result{}, fmt.Errorf("%w: %s: %s", ErrAuthFailed, c.name, msg)
		}
		return gjson.Result{}, &APIError{Client: c.name, StatusCode: resp.status, Message: msg}
	}
	return reply.Get("result"), nil
}

func (c *deluge) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.rpc(ctx, "auth.login", c.password)
	if err != nil {
		return err
	}
	if !result.Bool() {
		c.loggedIn = false
		return fmt.Errorf("%w: %s", ErrAuthFailed, c.name)
	}
	c.loggedIn = true
	return nil
}

func (c *deluge) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	c.mu.Lock()
	loggedIn := c.loggedIn
	c.mu.Unlock()

	if !loggedIn {
		if err := c.login(ctx); err != nil {
			return gjson.Result{}, err
		}
	}
	return c.rpc(ctx, method, params...)
}

// Connect logs in and checks that the web UI is attached to a daemon.
func (c *deluge) Connect(ctx context.Context) error {
	return c.connect(ctx, func(ctx context.Context) error {
		if err := c.login(ctx); err != nil {
			return err
		}
		connected, err := c.rpc(ctx, "web.connected")
		if err != nil {
			return err
		}
		if !connected.Bool() {
			return &APIError{Client: c.name, Message: "web UI is not connected to a daemon"}
		}
		return nil
	})
}

// AddMagnet submits the magnet with core.add_torrent_magnet.
func (c *deluge) AddMagnet(ctx context.Context, uri string) (magnet.InfoHash, error) {
	hash, link, err := magnetLink(uri)
	if err != nil {
		return "", err
	}
	if _, err := c.call(ctx, "core.add_torrent_magnet", link, map[string]any{}); err != nil {
		return "", fmt.Errorf("failed to add torrent: %w", err)
	}
	return hash, nil
}

// Remove deletes a torrent with core.remove_torrent.
func (c *deluge) Remove(ctx context.Context, hash magnet.InfoHash, deleteFiles bool) error {
	if !hash.Valid() {
		return magnet.ErrInvalidInfoHash
	}

	removed, err := c.call(ctx, "core.remove_torrent", hash.Lower(), deleteFiles)
	if err != nil {
		return fmt.Errorf("failed to remove torrent: %w", err)
	}
	if removed.Type == gjson.False {
		return fmt.Errorf("%w: %s", ErrTorrentNotFound, hash)
	}
	return nil
}

// List reads core.get_torrents_status. Deluge reports progress as a percentage.
func (c *deluge) List(ctx context.Context) ([]Torrent, error) {
	result, err := c.call(ctx, "core.get_torrents_status", map[string]any{},
		[]string{"name", "progress", "state", "total_size"})
	if err != nil {
		return nil, fmt.Errorf("failed to list torrents: %w", err)
	}

	var torrents []Torrent
	result.ForEach(func(key, t gjson.Result) bool {
		hash := magnet.InfoHash(strings.ToUpper(key.String()))
		if !hash.Valid() {
			return true
		}
		torrents = append(torrents, Torrent{
			Hash:     hash,
			Name:     t.Get("name").String(),
			Progress: t.Get("progress").Float() / 100,
			State:    strings.ToLower(t.Get("state").String()),
			Size:     t.Get("total_size").Int(),
		})
		return true
	})
	return torrents, nil
}
