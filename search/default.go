package search

import (
	"github.com/s0up4200/arrdeck/config"
)

// DefaultRegistry builds the registry of enabled built-in engines followed by
// the configured torznab endpoints.
func DefaultRegistry(cfg config.SearchConfig, opts ...EngineOption) (*Registry, error) {
	base := []EngineOption{
		WithRateLimit(cfg.RequestsPerSecond),
		WithUserAgent(cfg.UserAgent),
		WithRequestTimeout(cfg.Timeout),
	}
	opts = append(base, opts...)

	var engines []Engine
	if cfg.ThePirateBay.Enabled {
		engines = append(engines, NewThePirateBay(cfg.ThePirateBay.URL, opts...))
	}
	if cfg.Nyaa.Enabled {
		engines = append(engines, NewNyaa(cfg.Nyaa.URL, opts...))
	}
	if cfg.TorrentsCSV.Enabled {
		engines = append(engines, NewTorrentsCSV(cfg.TorrentsCSV.URL, opts...))
	}
	for _, t := range cfg.Torznab {
		engines = append(engines, NewTorznab(t.Name, t.URL, t.APIKey, opts...))
	}

	return NewRegistry(engines...)
}
