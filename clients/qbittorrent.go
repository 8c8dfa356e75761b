package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/blang/semver"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
	"github.com/s0up4200/arrdeck/qbittorrent"
)

// minWebAPIv2 is the first qBittorrent release with the v2 Web API.
var minWebAPIv2 = semver.MustParse("4.1.0")

// DetectQBittorrentID maps a qBittorrent version string ("v4.3.9", "4.0.4")
// to the backend id that can talk to it. Unparseable versions are assumed to
// be modern.
func DetectQBittorrentID(version string) string {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return IDQBittorrent41Plus
	}
	if v.LT(minWebAPIv2) {
		return IDQBittorrent
	}
	return IDQBittorrent41Plus
}

// modernQBittorrent speaks the v2 Web API through the qbittorrent package.
type modernQBittorrent struct {
	*session
	api *qbittorrent.Client
}

func newModernQBittorrent(cfg config.ClientConfig, o options) *modernQBittorrent {
	s := newSession(IDQBittorrent41Plus, "qBittorrent 4.1+", cfg, o)

	var qopts []qbittorrent.Option
	qopts = append(qopts, qbittorrent.WithTimeout(cfg.Timeout))
	if cfg.BasicUser != "" {
		qopts = append(qopts, qbittorrent.WithBasicAuth(cfg.BasicUser, cfg.BasicPass))
	}
	if cfg.TLSSkipVerify {
		qopts = append(qopts, qbittorrent.WithInsecureSkipVerify())
	}

	return &modernQBittorrent{
		session: s,
		api:     qbittorrent.NewClient(s.baseURL, cfg.Username, cfg.Password, s.logger, qopts...),
	}
}

// Connect logs in and logs the reported versions.
func (c *modernQBittorrent) Connect(ctx context.Context) error {
	return c.connect(ctx, func(ctx context.Context) error {
		if err := c.api.Login(ctx); err != nil {
			return err
		}
		app, webAPI, err := c.api.Version(ctx)
		if err != nil {
			return err
		}
		c.logger.Debug().Str("version", app).Str("webapi", webAPI).Msg("Connected to qBittorrent")
		return nil
	})
}

// AddMagnet submits the magnet through the v2 API.
func (c *modernQBittorrent) AddMagnet(ctx context.Context, uri string) (magnet.InfoHash, error) {
	hash, link, err := magnetLink(uri)
	if err != nil {
		return "", err
	}
	if err := c.api.AddMagnet(ctx, link, qbittorrent.AddOptions{}); err != nil {
		return "", err
	}
	return hash, nil
}

// Remove deletes a torrent by hash.
func (c *modernQBittorrent) Remove(ctx context.Context, hash magnet.InfoHash, deleteFiles bool) error {
	if !hash.Valid() {
		return magnet.ErrInvalidInfoHash
	}
	if _, err := c.api.GetTorrent(ctx, hash.String()); err != nil {
		if errors.Is(err, qbittorrent.ErrTorrentNotFound) {
			return fmt.Errorf("%w: %s", ErrTorrentNotFound, hash)
		}
		return err
	}
	return c.api.DeleteTorrents(ctx, []string{hash.String()}, deleteFiles)
}

// List returns every torrent.
func (c *modernQBittorrent) List(ctx context.Context) ([]Torrent, error) {
	infos, err := c.api.GetAllTorrents(ctx)
	if err != nil {
		return nil, err
	}

	torrents := make([]Torrent, 0, len(infos))
	for _, t := range infos {
		torrents = append(torrents, Torrent{
			Hash:     magnet.InfoHash(t.Hash),
			Name:     t.Name,
			Progress: t.Progress,
			State:    t.State,
			Size:     t.Size,
		})
	}
	return torrents, nil
}
