package config

import "time"

const defaultClientTimeout = 30 * time.Second

// Config represents the complete configuration structure
type Config struct {
	Clients []ClientConfig `mapstructure:"clients"`
	Search  SearchConfig   `mapstructure:"search"`
	Trakt   TraktConfig    `mapstructure:"trakt"`
	Filters FilterConfig   `mapstructure:"filters"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// ClientConfig holds connection details for one torrent client
type ClientConfig struct {
	Name          string        `mapstructure:"name"`
	Type          string        `mapstructure:"type"`
	URL           string        `mapstructure:"url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	BasicUser     string        `mapstructure:"basic_user"`
	BasicPass     string        `mapstructure:"basic_pass"`
	TLSSkipVerify bool          `mapstructure:"tls_skip_verify"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// SearchConfig controls the search engines and the aggregator
type SearchConfig struct {
	Timeout           time.Duration   `mapstructure:"timeout"`
	RequestsPerSecond float64         `mapstructure:"requests_per_second"`
	UserAgent         string          `mapstructure:"user_agent"`
	ThePirateBay      EngineConfig    `mapstructure:"thepiratebay"`
	Nyaa              EngineConfig    `mapstructure:"nyaa"`
	TorrentsCSV       EngineConfig    `mapstructure:"torrentscsv"`
	Torznab           []TorznabConfig `mapstructure:"torznab"`
}

// EngineConfig toggles a built-in engine and optionally overrides its base URL
type EngineConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TorznabConfig describes a Jackett or Prowlarr torznab endpoint
type TorznabConfig struct {
	Name   string `mapstructure:"name"`
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// TraktConfig holds Trakt API credentials
type TraktConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URL         string `mapstructure:"url"`
	ClientID    string `mapstructure:"client_id"`
	AccessToken string `mapstructure:"access_token"`
}

// FilterConfig maps a filter name to an expression applied to search results
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Color      bool   `mapstructure:"color"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}
