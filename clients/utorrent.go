package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
)

var tokenPattern = regexp.MustCompile(`<div[^>]*id=['"]token['"][^>]*>([^<]+)</div>`)

// uTorrent status bits, index 1 of a torrent row.
const (
	utStarted  = 1
	utChecking = 2
	utError    = 16
	utPaused   = 32
	utQueued   = 64
)

// uTorrent speaks the /gui/ token API shared by uTorrent and its web UI build.
type uTorrent struct {
	*session
	token string
}

func newUTorrent(id, name string, cfg config.ClientConfig, o options) *uTorrent {
	s := newSession(id, name, cfg, o)
	// Users often paste the web UI address including /gui.
	s.baseURL = strings.TrimSuffix(s.baseURL, "/gui")
	return &uTorrent{session: s}
}

// Connect fetches a CSRF token, which also validates the credentials.
func (c *uTorrent) Connect(ctx context.Context) error {
	return c.connect(ctx, func(ctx context.Context) error {
		_, err := c.fetchToken(ctx)
		return err
	})
}

func (c *uTorrent) fetchToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/gui/token.html", basic: true})
	if err != nil {
		return "", err
	}
	if resp.status == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: %s", ErrAuthFailed, c.name)
	}
	if !ok(resp.status) {
		return "", c.apiError(resp)
	}

	m := tokenPattern.FindSubmatch(resp.body)
	if m == nil {
		return "", &APIError{Client: c.name, StatusCode: resp.status, Message: "token not found in response"}
	}
	c.token = strings.TrimSpace(string(m[1]))
	return c.token, nil
}

// call issues a /gui/ request with the current token, refreshing it once
// when the server rejects it.
func (c *uTorrent) call(ctx context.Context, query url.Values) (*response, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	var err error
	if token == "" {
		if token, err = c.fetchToken(ctx); err != nil {
			return nil, err
		}
	}

	send := func(token string) (*response, error) {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("token", token)
		return c.doRequest(ctx, request{method: http.MethodGet, path: "/gui/", query: q, basic: true})
	}

	resp, err := send(token)
	if err != nil {
		return nil, err
	}
	// An expired token is reported as 400 "invalid request".
	if resp.status == http.StatusBadRequest {
		if token, err = c.fetchToken(ctx); err != nil {
			return nil, err
		}
		if resp, err = send(token); err != nil {
			return nil, err
		}
	}
	if !ok(resp.status) {
		return nil, c.apiError(resp)
	}
	if e := gjson.GetBytes(resp.body, "error"); e.Exists() {
		return nil, &APIError{Client: c.name, StatusCode: resp.status, Message: e.String()}
	}
	return resp, nil
}

// AddMagnet submits the magnet with action=add-url.
func (c *uTorrent) AddMagnet(ctx context.Context, uri string) (magnet.InfoHash, error) {
	hash, link, err := magnetLink(uri)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("action", "add-url")
	q.Set("s", link)
	if _, err := c.call(ctx, q); err != nil {
		return "", fmt.Errorf("failed to add torrent: %w", err)
	}
	return hash, nil
}

// Remove deletes a torrent with action=remove or removedata.
func (c *uTorrent) Remove(ctx context.Context, hash magnet.InfoHash, deleteFiles bool) error {
	if !hash.Valid() {
		return magnet.ErrInvalidInfoHash
	}

	action := "remove"
	if deleteFiles {
		action = "removedata"
	}

	q := url.Values{}
	q.Set("action", action)
	q.Set("hash", hash.String())
	if _, err := c.call(ctx, q); err != nil {
		return fmt.Errorf("failed to remove torrent: %w", err)
	}
	return nil
}

// List reads the torrent rows from list=1. Rows are positional arrays.
func (c *uTorrent) List(ctx context.Context) ([]Torrent, error) {
	q := url.Values{}
	q.Set("list", "1")
	resp, err := c.call(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list torrents: %w", err)
	}

	rows := gjson.GetBytes(resp.body, "torrents")
	if !rows.IsArray() {
		return nil, &APIError{Client: c.name, StatusCode: resp.status, Message: "missing torrents list"}
	}

	var torrents []Torrent
	rows.ForEach(func(_, row gjson.Result) bool {
		hash := magnet.InfoHash(strings.ToUpper(row.Get("0").String()))
		if !hash.Valid() {
			c.logger.Debug().Str("row", row.Raw).Msg("skipping malformed torrent row")
			return true
		}
		progress := row.Get("4").Float() / 1000
		torrents = append(torrents, Torrent{
			Hash:     hash,
			Name:     row.Get("2").String(),
			Size:     row.Get("3").Int(),
			Progress: progress,
			State:    uTorrentState(int(row.Get("1").Int()), progress),
		})
		return true
	})
	return torrents, nil
}

func uTorrentState(bits int, progress float64) string {
	switch {
	case bits&utError != 0:
		return "error"
	case bits&utPaused != 0:
		return "paused"
	case bits&utChecking != 0:
		return "checking"
	case bits&utStarted != 0 && progress >= 1:
		return "seeding"
	case bits&utStarted != 0:
		return "downloading"
	case bits&utQueued != 0:
		return "queued"
	case progress >= 1:
		return "finished"
	default:
		return "stopped"
	}
}
