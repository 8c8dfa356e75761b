package clients

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/s0up4200/arrdeck/status"
)

// Option configures a Client built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     zerolog.Logger
	publisher  status.Publisher
}

func defaultOptions() options {
	return options{
		logger:    zerolog.Nop(),
		publisher: status.Nop,
	}
}

// WithHTTPClient overrides the HTTP client. A cookie jar is added when missing.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPublisher sets where connection status events go.
func WithPublisher(p status.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}
