package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"
)

// CompilationError reports an expression that could not be compiled.
type CompilationError struct {
	Expression string
	Reason     string
	Position   int // column of the offending token, -1 when unknown
	Err        error
}

func (e *CompilationError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("filter %q: %s at column %d", e.Expression, e.Reason, e.Position)
	}
	if e.Err != nil {
		return fmt.Sprintf("filter %q: %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// newCompilationError extracts the message and column from expr's errors.
func newCompilationError(expression string, err error) *CompilationError {
	ce := &CompilationError{
		Expression: expression,
		Reason:     "failed to compile expression",
		Position:   -1,
		Err:        err,
	}

	var fe *file.Error
	if errors.As(err, &fe) {
		ce.Reason = fe.Message
		ce.Position = fe.Column
	}
	return ce
}

// EvaluationError reports a filter that failed while running against a result.
type EvaluationError struct {
	Expression  string
	ResultTitle string
	Reason      string
	Err         error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("filter %q on %q: %s", e.Expression, e.ResultTitle, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
