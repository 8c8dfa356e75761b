package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
)

const transmissionSessionHeader = "X-Transmission-Session-Id"

var transmissionStates = map[int64]string{
	0: "stopped",
	1: "check pending",
	2: "checking",
	3: "download pending",
	4: "downloading",
	5: "seed pending",
	6: "seeding",
}

// transmission speaks Transmission's RPC protocol. The server answers the
// first request with 409 and a session id that must be echoed afterwards.
type transmission struct {
	*session
	sessionID string
}

func newTransmission(cfg config.ClientConfig, o options) *transmission {
	s := newSession(IDTransmission, "Transmission", cfg, o)
	if !strings.HasSuffix(s.baseURL, "/rpc") {
		s.baseURL += "/transmission/rpc"
	}
	return &transmission{session: s}
}

type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments,omitempty"`
}

// rpc sends one RPC call and returns the arguments object of the reply.
func (c *transmission) rpc(ctx context.Context, method string, args any) (gjson.Result, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		c.mu.Lock()
		sid := c.sessionID
		c.mu.Unlock()

		header := http.Header{}
		if sid != "" {
			header.Set(transmissionSessionHeader, sid)
		}

		resp, err := c.doRequest(ctx, request{method: http.MethodPost, body: body, header: header, basic: true})
		if err != nil {
			return gjson.Result{}, err
		}

		switch {
		case resp.status == http.StatusConflict:
			c.mu.Lock()
			c.sessionID = resp.header.Get(transmissionSessionHeader)
			c.mu.Unlock()
			continue
		case resp.status == http.StatusUnauthorized:
			return gjson.Result{}, fmt.Errorf("%w: %s", ErrAuthFailed, c.name)
		case !ok(resp.status):
			return gjson.Result{}, c.apiError(resp)
		}

		reply := gjson.ParseBytes(resp.body)
		if result := reply.Get("result").String(); result != "success" {
			return gjson.Result{}, &APIError{Client: c.name, StatusCode: resp.status, Message: result}
		}
		return reply.Get("arguments"), nil
	}

	return gjson.Result{}, &APIError{Client: c.name, StatusCode: http.StatusConflict, Message: "session id handshake failed"}
}

// Connect performs the session handshake with session-get.
func (c *transmission) Connect(ctx context.Context) error {
	return c.connect(ctx, func(ctx context.Context) error {
		args, err := c.rpc(ctx, "session-get", map[string]any{"fields": []string{"version"}})
		if err != nil {
			return err
		}
		c.logger.Debug().Str("version", args.Get("version").String()).Msg("Connected to Transmission")
		return nil
	})
}

// AddMagnet submits the magnet with torrent-add.
func (c *transmission) AddMagnet(ctx context.Context, uri string) (magnet.InfoHash, error) {
	hash, link, err := magnetLink(uri)
	if err != nil {
		return "", err
	}

	args, err := c.rpc(ctx, "torrent-add", map[string]any{"filename": link})
	if err != nil {
		return "", fmt.Errorf("failed to add torrent: %w", err)
	}
	if args.Get("torrent-duplicate").Exists() {
		c.logger.Debug().Str("hash", hash.String()).Msg("torrent already present")
	}
	return hash, nil
}

// Remove deletes a torrent with torrent-remove.
func (c *transmission) Remove(ctx context.Context, hash magnet.InfoHash, deleteFiles bool) error {
	if !hash.Valid() {
		return magnet.ErrInvalidInfoHash
	}

	_, err := c.rpc(ctx, "torrent-remove", map[string]any{
		"ids":               []string{hash.Lower()},
		"delete-local-data": deleteFiles,
	})
	if err != nil {
		return fmt.Errorf("failed to remove torrent: %w", err)
	}
	return nil
}

// List returns every torrent via torrent-get.
func (c *transmission) List(ctx context.Context) ([]Torrent, error) {
	args, err := c.rpc(ctx, "torrent-get", map[string]any{
		"fields": []string{"hashString", "name", "percentDone", "status", "totalSize"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list torrents: %w", err)
	}

	var torrents []Torrent
	args.Get("torrents").ForEach(func(_, t gjson.Result) bool {
		hash := magnet.InfoHash(strings.ToUpper(t.Get("hashString").String()))
		if !hash.Valid() {
			return true
		}
		state, known := transmissionStates[t.Get("status").Int()]
		if !known {
			state = "unknown"
		}
		torrents = append(torrents, Torrent{
			Hash:     hash,
			Name:     t.Get("name").String(),
			Progress: t.Get("percentDone").Float(),
			State:    state,
			Size:     t.Get("totalSize").Int(),
		})
		return true
	})
	return torrents, nil
}
