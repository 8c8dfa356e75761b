package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultEngineTimeout bounds a single engine's search.
const DefaultEngineTimeout = 20 * time.Second

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithEngineTimeout sets the per-engine timeout.
func WithEngineTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// Aggregator runs a query against every engine of a registry.
type Aggregator struct {
	registry *Registry
	logger   zerolog.Logger
	timeout  time.Duration
}

// NewAggregator creates an aggregator over reg.
func NewAggregator(reg *Registry, logger zerolog.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: reg,
		logger:   logger,
		timeout:  DefaultEngineTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Engines returns a copy of the registry's engines.
func (a *Aggregator) Engines() map[string]Engine {
	return a.registry.Engines()
}

// Names returns engine names in registry order.
func (a *Aggregator) Names() []string {
	return a.registry.Names()
}

// Response is the merged outcome of a search.
type Response struct {
	Results  []Result
	Failures []EngineFailure
}

// Matcher decides whether a result is kept.
type Matcher interface {
	Match(Result) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(Result) bool

// Match calls f(r).
func (f MatcherFunc) Match(r Result) bool { return f(r) }

// Filter returns a copy of the response keeping only matching results.
func (r *Response) Filter(m Matcher) *Response {
	out := &Response{Failures: r.Failures}
	for _, res := range r.Results {
		if m.Match(res) {
			out.Results = append(out.Results, res)
		}
	}
	return out
}

// Search queries every engine concurrently. Results are concatenated in
// registry order, each engine's own order preserved. Engine failures are
// collected in Response.Failures; if every engine fails an
// *AllEnginesFailedError is returned. If ctx ends before all engines finish
// Search returns ctx.Err() and no partial results.
//
// An engine that ignores its context is abandoned at its deadline and counted
// as a timeout, but its goroutine keeps running until Search on that engine
// returns.
func (a *Aggregator) Search(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	names := a.registry.Names()
	if len(names) == 0 {
		return nil, ErrNoEngines
	}

	results := make([][]Result, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		engine, _ := a.registry.Get(name)

		g.Go(func() error {
			start := time.Now()
			res, err := a.searchEngine(ctx, engine, query)
			if err != nil {
				errs[i] = err
				a.logger.Warn().
					Err(err).
					Str("engine", name).
					Dur("took", time.Since(start)).
					Msg("Search engine failed")
				// Continue with the other engines
				return nil
			}

			for j := range res {
				res[j].Engine = name
			}
			results[i] = res
			a.logger.Debug().
				Str("engine", name).
				Int("results", len(res)).
				Dur("took", time.Since(start)).
				Msg("Search engine finished")
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &Response{}
	for i, name := range names {
		if errs[i] != nil {
			resp.Failures = append(resp.Failures, EngineFailure{Engine: name, Err: errs[i]})
			continue
		}
		resp.Results = append(resp.Results, results[i]...)
	}

	if len(resp.Failures) == len(names) {
		return nil, &AllEnginesFailedError{Failures: resp.Failures}
	}

	return resp, nil
}

type outcome struct {
	results []Result
	err     error
}

// searchEngine runs one engine under the per-engine timeout and normalises
// whatever it returns into an *EngineError. The deadline is enforced even for
// engines that ignore their context.
func (a *Aggregator) searchEngine(ctx context.Context, engine Engine, query string) ([]Result, error) {
	ectx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	name := engine.Name()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: parseError(name, fmt.Errorf("panic: %v", r))}
			}
		}()
		res, err := engine.Search(ectx, query)
		done <- outcome{results: res, err: err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-ectx.Done():
		o = outcome{err: ectx.Err()}
	}

	if o.err == nil {
		return o.results, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	timedOut := errors.Is(ectx.Err(), context.DeadlineExceeded)
	var engineErr *EngineError
	switch {
	case errors.As(o.err, &engineErr) && (engineErr.Kind == KindTimeout || !timedOut):
		return nil, o.err
	case timedOut:
		return nil, &EngineError{Engine: name, Kind: KindTimeout, Err: fmt.Errorf("no response within %s: %w", a.timeout, o.err)}
	default:
		return nil, networkError(name, o.err)
	}
}
