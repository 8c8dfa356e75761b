package trakt

import (
	"net/http"
	"time"
)

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCooldown attaches a shared cooldown. Every 429 extends it and calls
// made while it is active fail without reaching Trakt.
func WithCooldown(cd *Cooldown) Option {
	return func(c *Client) {
		c.cooldown = cd
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}
