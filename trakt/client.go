package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const apiVersion = "2"

// Config holds Trakt credentials.
type Config struct {
	URL         string
	ClientID    string
	AccessToken string
}

// Client represents a Trakt API client
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	userAgent   string
	httpClient  *http.Client
	cooldown    *Cooldown
	logger      zerolog.Logger
	now         func() time.Time
}

// NewClient creates a new Trakt client. It does not contact Trakt; use
// TestConnection for that.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: trakt URL is required", ErrInvalidConfig)
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: trakt client id is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		userAgent:   "arrdeck",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// doRequest performs an authenticated request and classifies the response.
// It never retries.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	if c.cooldown != nil {
		if err := c.cooldown.check(); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("trakt-api-version", apiVersion)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		rl := NewRateLimitError(fmt.Sprintf("%s %s", method, endpoint))
		rl.RetryAfterSeconds = parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
		if c.cooldown != nil {
			c.cooldown.Extend(rl.Wait())
		}
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("retry_after", rl.RetryAfterSeconds).
			Msg("Trakt rate limit hit")
		return nil, rl
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, newAPIError(resp.StatusCode, data)
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	data, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// TestConnection verifies the credentials and returns the account settings.
func (c *Client) TestConnection(ctx context.Context) (*UserSettings, error) {
	var settings UserSettings
	if err := c.getJSON(ctx, "/users/settings", &settings); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("user", settings.User.Username).Msg("Connected to Trakt")
	return &settings, nil
}

// GetWatchedShows returns every show the user has watched.
func (c *Client) GetWatchedShows(ctx context.Context) ([]WatchedShow, error) {
	var shows []WatchedShow
	if err := c.getJSON(ctx, "/sync/watched/shows", &shows); err != nil {
		return nil, fmt.Errorf("failed to get watched shows: %w", err)
	}

	c.logger.Debug().Int("count", len(shows)).Msg("Retrieved watched shows from Trakt")
	return shows, nil
}

// GetWatchedMovies returns every movie the user has watched.
func (c *Client) GetWatchedMovies(ctx context.Context) ([]WatchedMovie, error) {
	var movies []WatchedMovie
	if err := c.getJSON(ctx, "/sync/watched/movies", &movies); err != nil {
		return nil, fmt.Errorf("failed to get watched movies: %w", err)
	}

	c.logger.Debug().Int("count", len(movies)).Msg("Retrieved watched movies from Trakt")
	return movies, nil
}

// AddToHistory marks items as watched.
func (c *Client) AddToHistory(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	if req.Empty() {
		return &HistoryResponse{}, nil
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/sync/history", req)
	if err != nil {
		return nil, fmt.Errorf("failed to add history: %w", err)
	}

	var resp HistoryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}
