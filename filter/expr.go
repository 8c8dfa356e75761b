package filter

import (
	"fmt"
	"maps"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/arrdeck/search"
)

// Filter is a compiled expression over search results.
type Filter struct {
	expression string
	program    *vm.Program
	compiler   *Compiler
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// Compiler turns expressions into filters.
type Compiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helperFuncs: helperFunctions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler(WithCache(100))

// Compile compiles expression with the shared caching compiler.
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	// Check cache if enabled
	if c.cache != nil {
		if f, ok := c.cache.get(expression); ok {
			return f, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.env(search.Result{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, err)
	}

	filter := &Filter{
		expression: expression,
		program:    program,
		compiler:   c,
	}

	// Cache if enabled
	if c.cache != nil {
		c.cache.put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.len()
	}
	return 0
}

// env builds the variables visible to an expression. Unknown identifiers are
// compile errors, so typos in field names surface early.
func (c *Compiler) env(r search.Result) map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+8)
	maps.Copy(env, c.helperFuncs)

	env["Title"] = r.Title
	env["Link"] = r.Link
	env["Size"] = r.Size
	env["Seeders"] = r.Seeders
	env["Leechers"] = r.Leechers
	env["Engine"] = r.Engine
	env["InfoHash"] = r.InfoHash.String()
	env["IsMagnet"] = strings.HasPrefix(r.Link, "magnet:")

	return env
}

func helperFunctions() map[string]any {
	return map[string]any{
		// String helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,

		// Size helpers, binary units
		"kb": func(n any) int64 { return int64(toFloat(n) * humanize.KiByte) },
		"mb": func(n any) int64 { return int64(toFloat(n) * humanize.MiByte) },
		"gb": func(n any) int64 { return int64(toFloat(n) * humanize.GiByte) },
		"bytes": func(s string) int64 {
			n, err := humanize.ParseBytes(s)
			if err != nil {
				return 0
			}
			return int64(n)
		},
	}
}

func toFloat(n any) float64 {
	switch v := n.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// Evaluate runs the filter against r.
func (f *Filter) Evaluate(r search.Result) (bool, error) {
	out, err := expr.Run(f.program, f.compiler.env(r))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, ResultTitle: r.Title, Reason: "evaluation failed", Err: err}
	}
	match, ok := out.(bool)
	if !ok {
		return false, &EvaluationError{Expression: f.expression, ResultTitle: r.Title, Reason: fmt.Sprintf("expression returned %T, not bool", out)}
	}
	return match, nil
}

// Match reports whether r passes the filter. Evaluation errors count as no match.
func (f *Filter) Match(r search.Result) bool {
	ok, err := f.Evaluate(r)
	return err == nil && ok
}

// Apply returns the results that pass the filter, in order.
func (f *Filter) Apply(results []search.Result) []search.Result {
	var out []search.Result
	for _, r := range results {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Expression returns the original filter expression
func (f *Filter) Expression() string {
	return f.expression
}

// String returns the original expression
func (f *Filter) String() string {
	return f.expression
}
