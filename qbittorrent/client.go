package qbittorrent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
)

// Client wraps the qBittorrent API client
type Client struct {
	client *qbittorrent.Client
	logger zerolog.Logger

	mu       sync.Mutex
	loggedIn bool
}

// NewClient creates a new qBittorrent client. It does not contact the server;
// call Login (or any other method, which logs in lazily) to authenticate.
func NewClient(url, username, password string, logger zerolog.Logger, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg := qbittorrent.Config{
		Host:          url,
		Username:      username,
		Password:      password,
		Timeout:       int(o.timeout.Seconds()),
		TLSSkipVerify: o.skipVerify,
	}
	if o.basicUser != "" {
		cfg.BasicUser = o.basicUser
		cfg.BasicPass = o.basicPass
	}

	return &Client{
		client: qbittorrent.NewClient(cfg),
		logger: logger,
	}
}

// Login authenticates against the Web API.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.LoginCtx(ctx); err != nil {
		c.loggedIn = false
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.loggedIn = true
	return nil
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	loggedIn := c.loggedIn
	c.mu.Unlock()
	if loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// Version returns the application and Web API versions reported by the server.
func (c *Client) Version(ctx context.Context) (app string, webAPI string, err error) {
	if err := c.ensureLogin(ctx); err != nil {
		return "", "", err
	}

	app, err = c.client.GetAppVersionCtx(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to get app version: %w", err)
	}
	webAPI, err = c.client.GetWebAPIVersionCtx(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to get web api version: %w", err)
	}

	return app, webAPI, nil
}

// GetAllTorrents retrieves all torrents from qBittorrent
func (c *Client) GetAllTorrents(ctx context.Context) ([]*TorrentInfo, error) {
	return c.getTorrents(ctx, qbittorrent.TorrentFilterOptions{})
}

// GetTorrent retrieves a single torrent by hash.
func (c *Client) GetTorrent(ctx context.Context, hash string) (*TorrentInfo, error) {
	if !validHash(hash) {
		return nil, ErrInvalidHash
	}

	torrents, err := c.getTorrents(ctx, qbittorrent.TorrentFilterOptions{
		Hashes: []string{strings.ToLower(hash)},
	})
	if err != nil {
		return nil, err
	}
	if len(torrents) == 0 {
		return nil, ErrTorrentNotFound
	}
	return torrents[0], nil
}

func (c *Client) getTorrents(ctx context.Context, filter qbittorrent.TorrentFilterOptions) ([]*TorrentInfo, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return nil, err
	}

	torrents, err := c.client.GetTorrentsCtx(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get torrents: %w", err)
	}

	c.logger.Debug().Msgf("Retrieved %d torrents from qBittorrent", len(torrents))

	results := make([]*TorrentInfo, 0, len(torrents))
	for _, t := range torrents {
		results = append(results, toTorrentInfo(t))
	}

	return results, nil
}

// AddMagnet submits a magnet link. Category and save path are optional.
func (c *Client) AddMagnet(ctx context.Context, uri string, opts AddOptions) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}

	if err := c.client.AddTorrentFromUrlCtx(ctx, uri, opts.params()); err != nil {
		return fmt.Errorf("%w: %w", ErrAddFailed, err)
	}

	c.logger.Debug().Str("category", opts.Category).Msg("Added magnet to qBittorrent")
	return nil
}

// DeleteTorrents removes torrents by hash, optionally deleting their data.
func (c *Client) DeleteTorrents(ctx context.Context, hashes []string, deleteFiles bool) error {
	if len(hashes) == 0 {
		return nil
	}
	lowered := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if !validHash(h) {
			return fmt.Errorf("%w: %q", ErrInvalidHash, h)
		}
		lowered = append(lowered, strings.ToLower(h))
	}

	if err := c.ensureLogin(ctx); err != nil {
		return err
	}

	if err := c.client.DeleteTorrentsCtx(ctx, lowered, deleteFiles); err != nil {
		return fmt.Errorf("failed to delete torrents: %w", err)
	}
	return nil
}

func toTorrentInfo(t qbittorrent.Torrent) *TorrentInfo {
	info := &TorrentInfo{
		Hash:           strings.ToUpper(t.Hash),
		Name:           t.Name,
		SavePath:       t.SavePath,
		ContentPath:    t.ContentPath,
		State:          string(t.State),
		Size:           t.Size,
		Progress:       t.Progress,
		DownloadedSize: t.Downloaded,
		UploadedSize:   t.Uploaded,
		Ratio:          t.Ratio,
		Category:       t.Category,
		Tags:           splitTags(t.Tags),
	}
	if t.AddedOn > 0 {
		info.AddedOn = time.Unix(t.AddedOn, 0)
	}
	if t.CompletionOn > 0 {
		info.CompletionOn = time.Unix(t.CompletionOn, 0)
	}

	// Check if actively seeding
	info.IsSeeding = info.IsActivelySeeding()

	return info
}

func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validHash(hash string) bool {
	if len(hash) != 40 {
		return false
	}
	for _, r := range hash {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
