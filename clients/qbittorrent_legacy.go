package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
)

// legacyQBittorrent speaks the Web API v1 exposed by qBittorrent before 4.1.
type legacyQBittorrent struct {
	*session
	loggedIn bool
}

func newLegacyQBittorrent(cfg config.ClientConfig, o options) *legacyQBittorrent {
	return &legacyQBittorrent{
		session: newSession(IDQBittorrent, "qBittorrent (pre4.1)", cfg, o),
	}
}

// Connect logs in and stores the SID cookie.
func (c *legacyQBittorrent) Connect(ctx context.Context) error {
	return c.connect(ctx, c.login)
}

func (c *legacyQBittorrent) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	resp, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		form:   form,
		// qBittorrent rejects logins whose Referer does not match the host.
		header: http.Header{"Referer": []string{c.baseURL}},
	})
	if err != nil {
		return err
	}
	if resp.status == http.StatusForbidden {
		return fmt.Errorf("%w: %s: too many failed logins, IP banned", ErrAuthFailed, c.name)
	}
	if !ok(resp.status) {
		return c.apiError(resp)
	}
	if strings.TrimSpace(string(resp.body)) != "Ok." {
		return fmt.Errorf("%w: %s", ErrAuthFailed, c.name)
	}

	c.loggedIn = true
	c.logger.Debug().Msg("Logged in to qBittorrent")
	return nil
}

// call performs an authenticated request, logging in first and once more on 403.
func (c *legacyQBittorrent) call(ctx context.Context, r request) (*response, error) {
	c.mu.Lock()
	loggedIn := c.loggedIn
	c.mu.Unlock()

	if !loggedIn {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusForbidden {
		c.mu.Lock()
		c.loggedIn = false
		c.mu.Unlock()
		if err := c.login(ctx); err != nil {
			return nil, err
		}
		if resp, err = c.doRequest(ctx, r); err != nil {
			return nil, err
		}
	}
	if !ok(resp.status) {
		return nil, c.apiError(resp)
	}
	return resp, nil
}

// AddMagnet submits the magnet through /command/download.
func (c *legacyQBittorrent) AddMagnet(ctx context.Context, uri string) (magnet.InfoHash, error) {
	hash, link, err := magnetLink(uri)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("urls", link)
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "/command/download", form: form}); err != nil {
		return "", fmt.Errorf("failed to add torrent: %w", err)
	}

	return hash, nil
}

// Remove deletes a torrent through /command/delete or /command/deletePerm.
func (c *legacyQBittorrent) Remove(ctx context.Context, hash magnet.InfoHash, deleteFiles bool) error {
	if !hash.Valid() {
		return magnet.ErrInvalidInfoHash
	}

	path := "/command/delete"
	if deleteFiles {
		path = "/command/deletePerm"
	}

	form := url.Values{}
	form.Set("hashes", hash.Lower())
	if _, err := c.call(ctx, request{method: http.MethodPost, path: path, form: form}); err != nil {
		return fmt.Errorf("failed to remove torrent: %w", err)
	}
	return nil
}

type legacyTorrent struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
	State    string  `json:"state"`
	Size     int64   `json:"size"`
}

// List reads /query/torrents.
func (c *legacyQBittorrent) List(ctx context.Context) ([]Torrent, error) {
	resp, err := c.call(ctx, request{method: http.MethodGet, path: "/query/torrents"})
	if err != nil {
		return nil, fmt.Errorf("failed to list torrents: %w", err)
	}

	var raw []legacyTorrent
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	torrents := make([]Torrent, 0, len(raw))
	for _, t := range raw {
		torrents = append(torrents, Torrent{
			Hash:     magnet.InfoHash(strings.ToUpper(t.Hash)),
			Name:     t.Name,
			Progress: t.Progress,
			State:    t.State,
			Size:     t.Size,
		})
	}
	return torrents, nil
}
