package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ClientTypes lists the torrent client types the clients package can build.
var ClientTypes = []string{
	"qbittorrent",
	"qbittorrent41plus",
	"utorrent",
	"utorrentwebui",
	"transmission",
	"deluge",
}

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".arrdeck"))
		}

		// Check /etc
		v.AddConfigPath("/etc/arrdeck/")
	}

	v.SetEnvPrefix("ARRDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyClientDefaults(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Search defaults
	v.SetDefault("search.timeout", "20s")
	v.SetDefault("search.requests_per_second", 2.0)
	v.SetDefault("search.user_agent", "arrdeck")
	v.SetDefault("search.thepiratebay.enabled", true)
	v.SetDefault("search.thepiratebay.url", "https://apibay.org")
	v.SetDefault("search.nyaa.enabled", true)
	v.SetDefault("search.nyaa.url", "https://nyaa.si")
	v.SetDefault("search.torrentscsv.enabled", true)
	v.SetDefault("search.torrentscsv.url", "https://torrents-csv.com")

	// Trakt defaults
	v.SetDefault("trakt.url", "https://api.trakt.tv")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
}

// applyClientDefaults fills per-client values viper cannot default inside a list
func applyClientDefaults(cfg *Config) {
	for i := range cfg.Clients {
		c := &cfg.Clients[i]
		c.Type = strings.ToLower(strings.TrimSpace(c.Type))
		if c.Name == "" {
			c.Name = c.Type
		}
		if c.Timeout <= 0 {
			c.Timeout = defaultClientTimeout
		}
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Clients))
	for i, c := range cfg.Clients {
		if c.URL == "" {
			return fmt.Errorf("clients[%d].url is required", i)
		}
		if !isClientType(c.Type) {
			return fmt.Errorf("invalid clients[%d].type: %s (must be one of %s)", i, c.Type, strings.Join(ClientTypes, ", "))
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate client name: %s", c.Name)
		}
		seen[c.Name] = true
	}

	if cfg.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive")
	}
	if cfg.Search.RequestsPerSecond < 0 {
		return fmt.Errorf("search.requests_per_second must not be negative")
	}
	for i, t := range cfg.Search.Torznab {
		if t.Name == "" || t.URL == "" {
			return fmt.Errorf("search.torznab[%d] requires name and url", i)
		}
	}

	if cfg.Trakt.Enabled {
		if cfg.Trakt.ClientID == "" {
			return fmt.Errorf("trakt.client_id is required when trakt is enabled")
		}
		if cfg.Trakt.URL == "" {
			return fmt.Errorf("trakt.url is required when trakt is enabled")
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// Client returns the configured client with the given name.
func (c *Config) Client(name string) (ClientConfig, bool) {
	for _, cc := range c.Clients {
		if strings.EqualFold(cc.Name, name) {
			return cc, true
		}
	}
	return ClientConfig{}, false
}

func isClientType(t string) bool {
	for _, ct := range ClientTypes {
		if ct == t {
			return true
		}
	}
	return false
}
