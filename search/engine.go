package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/s0up4200/arrdeck/magnet"
)

// Engine queries one torrent indexing site.
type Engine interface {
	// Name returns the unique engine name used as the registry key.
	Name() string
	// Search returns the results for query. Failures are *EngineError.
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is a single torrent found by an engine.
type Result struct {
	Title    string          `json:"title"`
	Link     string          `json:"link"` // magnet or .torrent download link
	Size     int64           `json:"size"`
	Seeders  int             `json:"seeders"`
	Leechers int             `json:"leechers"`
	Engine   string          `json:"engine"`
	InfoHash magnet.InfoHash `json:"info_hash,omitempty"`
}

// Kind classifies an engine failure.
type Kind string

const (
	KindNetwork Kind = "network"
	KindParse   Kind = "parse"
	KindTimeout Kind = "timeout"
)

// EngineError is returned by engines when a search fails.
type EngineError struct {
	Engine string
	Kind   Kind
	Err    error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Engine, e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is an engine network failure.
func IsNetworkError(err error) bool {
	return isKind(err, KindNetwork)
}

// IsParseError reports whether err is an engine parse failure.
func IsParseError(err error) bool {
	return isKind(err, KindParse)
}

// IsTimeoutError reports whether err is an engine timeout.
func IsTimeoutError(err error) bool {
	return isKind(err, KindTimeout)
}

func isKind(err error, kind Kind) bool {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Kind == kind
	}
	return false
}

func networkError(engine string, err error) error {
	return &EngineError{Engine: engine, Kind: KindNetwork, Err: err}
}

func parseError(engine string, err error) error {
	return &EngineError{Engine: engine, Kind: KindParse, Err: err}
}
