package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// fetcher performs rate limited GET requests on behalf of one engine.
type fetcher struct {
	engine     string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

func newFetcher(engine string, o engineOptions) *fetcher {
	return &fetcher{
		engine:     engine,
		httpClient: o.httpClient,
		userAgent:  o.userAgent,
		limiter:    rate.NewLimiter(o.limit, o.burst),
		logger:     o.logger.With().Str("engine", engine).Logger(),
	}
}

// get fetches endpoint?params and returns the body. Transport failures and
// non-2xx statuses are network errors.
func (f *fetcher) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, f.contextError(ctx, err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, networkError(f.engine, fmt.Errorf("invalid url %q: %w", endpoint, err))
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, networkError(f.engine, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, f.contextError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, f.contextError(ctx, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, networkError(f.engine, &StatusError{StatusCode: resp.StatusCode})
	}

	return body, nil
}

func (f *fetcher) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &EngineError{Engine: f.engine, Kind: KindTimeout, Err: err}
	}
	return networkError(f.engine, err)
}

// StatusError reports an unexpected HTTP status from a search site.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
