package search

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "arrdeck"
	defaultRate      = 2
	defaultBurst     = 3
	maxBodyBytes     = 8 << 20
)

// EngineOption configures the HTTP behaviour of a built-in engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	httpClient *http.Client
	userAgent  string
	limit      rate.Limit
	burst      int
	logger     zerolog.Logger
}

func newEngineOptions(opts []EngineOption) engineOptions {
	o := engineOptions{
		httpClient: &http.Client{Timeout: DefaultEngineTimeout},
		userAgent:  defaultUserAgent,
		limit:      defaultRate,
		burst:      defaultBurst,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithHTTPClient sets the HTTP client used by engines.
func WithHTTPClient(c *http.Client) EngineOption {
	return func(o *engineOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) EngineOption {
	return func(o *engineOptions) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithRateLimit caps requests per second per engine. Zero disables limiting.
func WithRateLimit(perSecond float64) EngineOption {
	return func(o *engineOptions) {
		if perSecond <= 0 {
			o.limit = rate.Inf
			return
		}
		o.limit = rate.Limit(perSecond)
	}
}

// WithRequestTimeout sets the HTTP client timeout when no client was supplied.
func WithRequestTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		if d > 0 && o.httpClient != nil {
			c := *o.httpClient
			c.Timeout = d
			o.httpClient = &c
		}
	}
}

// WithEngineLogger sets the logger used for skipped entries.
func WithEngineLogger(logger zerolog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}
