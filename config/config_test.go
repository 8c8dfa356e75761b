package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Clients: []ClientConfig{
			{Name: "seedbox", Type: "qbittorrent41plus", URL: "http://localhost:8080"},
		},
		Search: SearchConfig{
			Timeout: 20 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "unknown client type",
			mutate: func(c *Config) {
				c.Clients[0].Type = "rtorrent"
			},
			wantErr: "invalid clients[0].type: rtorrent",
		},
		{
			name: "missing client url",
			mutate: func(c *Config) {
				c.Clients[0].URL = ""
			},
			wantErr: "clients[0].url is required",
		},
		{
			name: "duplicate client name",
			mutate: func(c *Config) {
				c.Clients = append(c.Clients, ClientConfig{Name: "seedbox", Type: "deluge", URL: "http://localhost:8112"})
			},
			wantErr: "duplicate client name: seedbox",
		},
		{
			name: "zero search timeout",
			mutate: func(c *Config) {
				c.Search.Timeout = 0
			},
			wantErr: "search.timeout must be positive",
		},
		{
			name: "torznab without url",
			mutate: func(c *Config) {
				c.Search.Torznab = []TorznabConfig{{Name: "jackett"}}
			},
			wantErr: "search.torznab[0] requires name and url",
		},
		{
			name: "trakt enabled without client id",
			mutate: func(c *Config) {
				c.Trakt = TraktConfig{Enabled: true, URL: "https://api.trakt.tv"}
			},
			wantErr: "trakt.client_id is required",
		},
		{
			name: "invalid level",
			mutate: func(c *Config) {
				c.Logging.Level = "trace"
			},
			wantErr: "invalid logging level: trace",
		},
		{
			name: "invalid format",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
clients:
  - name: home
    type: Transmission
    url: http://localhost:9091
  - type: deluge
    url: http://localhost:8112
    password: deluge
search:
  nyaa:
    enabled: false
  torznab:
    - name: jackett
      url: http://localhost:9117/api/v2.0/indexers/all/results/torznab
      api_key: secret
trakt:
  enabled: true
  client_id: abc
  access_token: token
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Clients, 2)
	assert.Equal(t, "transmission", cfg.Clients[0].Type)
	assert.Equal(t, "deluge", cfg.Clients[1].Name, "name defaults to type")
	assert.Equal(t, 30*time.Second, cfg.Clients[1].Timeout)

	assert.Equal(t, 20*time.Second, cfg.Search.Timeout)
	assert.True(t, cfg.Search.ThePirateBay.Enabled)
	assert.Equal(t, "https://apibay.org", cfg.Search.ThePirateBay.URL)
	assert.False(t, cfg.Search.Nyaa.Enabled)
	require.Len(t, cfg.Search.Torznab, 1)
	assert.Equal(t, "secret", cfg.Search.Torznab[0].APIKey)

	assert.Equal(t, "https://api.trakt.tv", cfg.Trakt.URL)
	assert.Equal(t, "info", cfg.Logging.Level)

	home, ok := cfg.Client("HOME")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9091", home.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
