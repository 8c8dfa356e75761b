package clients

import (
	"fmt"
	"strings"

	"github.com/s0up4200/arrdeck/config"
)

// New builds the adapter for cfg.Type. It does not contact the backend.
func New(cfg config.ClientConfig, opts ...Option) (Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(cfg.Type) {
	case IDQBittorrent:
		return newLegacyQBittorrent(cfg, o), nil
	case IDQBittorrent41Plus:
		return newModernQBittorrent(cfg, o), nil
	case IDUTorrent:
		return newUTorrent(IDUTorrent, "uTorrent", cfg, o), nil
	case IDUTorrentWebUI:
		return newUTorrent(IDUTorrentWebUI, "uTorrent Web", cfg, o), nil
	case IDTransmission:
		return newTransmission(cfg, o), nil
	case IDDeluge:
		return newDeluge(cfg, o), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClientType, cfg.Type)
	}
}

// NewAll builds an adapter for every configured client, in order.
func NewAll(cfgs []config.ClientConfig, opts ...Option) ([]Client, error) {
	out := make([]Client, 0, len(cfgs))
	for _, cfg := range cfgs {
		c, err := New(cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", cfg.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}
