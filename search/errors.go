package search

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyQuery is returned when the query is blank.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrDuplicateEngine is returned when two engines share a name.
	ErrDuplicateEngine = errors.New("duplicate engine name")

	// ErrUnknownEngine is returned when a requested engine is not registered.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrNoEngines is returned when searching an empty registry.
	ErrNoEngines = errors.New("no search engines registered")
)

// EngineFailure records one engine that failed during a search.
type EngineFailure struct {
	Engine string
	Err    error
}

// AllEnginesFailedError is returned when no engine produced a result set.
type AllEnginesFailedError struct {
	Failures []EngineFailure
}

// Error implements the error interface
func (e *AllEnginesFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Engine, f.Err))
	}
	return fmt.Sprintf("all %d search engines failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the individual engine errors to errors.Is and errors.As.
func (e *AllEnginesFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
