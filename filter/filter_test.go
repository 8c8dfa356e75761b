package filter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/arrdeck/magnet"
	"github.com/s0up4200/arrdeck/search"
)

var results = []search.Result{
	{Title: "Ubuntu 24.04 Desktop amd64", Size: 6 << 30, Seeders: 150, Leechers: 12, Engine: "ThePirateBay", Link: "magnet:?xt=urn:btih:x", InfoHash: magnet.InfoHash("C12FE1C06BBA254A9DC9F519B335AA7C1367A88A")},
	{Title: "Ubuntu 22.04 Server", Size: 2 << 30, Seeders: 0, Leechers: 1, Engine: "Nyaa", Link: "https://nyaa.si/download/1.torrent"},
	{Title: "Debian 12 netinst", Size: 600 << 20, Seeders: 40, Leechers: 3, Engine: "TorrentsCSV"},
}

func titles(rs []search.Result) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Title)
	}
	return out
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `Seeders > 0`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `contains(Title, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown field",
			expression: `Year > 2020`,
			wantErr:    true,
		},
		{
			name:       "non boolean",
			expression: `Seeders + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `contains(Title, "ubuntu") and Size < gb(4) and Engine in ["Nyaa", "ThePirateBay"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewCompiler().Compile(tt.expression)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.expression, f.Expression())
				return
			}

			require.Error(t, err)
			var compErr *CompilationError
			assert.True(t, errors.As(err, &compErr))
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		expression string
		want       []string
	}{
		{`Seeders > 0`, []string{"Ubuntu 24.04 Desktop amd64", "Debian 12 netinst"}},
		{`contains(Title, "UBUNTU")`, []string{"Ubuntu 24.04 Desktop amd64", "Ubuntu 22.04 Server"}},
		{`Size < gb(1)`, []string{"Debian 12 netinst"}},
		{`Size >= mb(600) and Size <= gb(2.5)`, []string{"Ubuntu 22.04 Server", "Debian 12 netinst"}},
		{`Size > bytes("5 GiB")`, []string{"Ubuntu 24.04 Desktop amd64"}},
		{`IsMagnet`, []string{"Ubuntu 24.04 Desktop amd64"}},
		{`InfoHash != ""`, []string{"Ubuntu 24.04 Desktop amd64"}},
		{`Engine == "Nyaa" or Leechers > 10`, []string{"Ubuntu 24.04 Desktop amd64", "Ubuntu 22.04 Server"}},
		{`startsWith(Title, "deb") and endsWith(Title, "NETINST")`, []string{"Debian 12 netinst"}},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(f.Apply(results)))
		})
	}
}

func TestFilterAsMatcher(t *testing.T) {
	f, err := Compile(`Seeders >= 100`)
	require.NoError(t, err)

	resp := (&search.Response{Results: results}).Filter(f)
	assert.Equal(t, []string{"Ubuntu 24.04 Desktop amd64"}, titles(resp.Results))
}

func TestCompilerCache(t *testing.T) {
	c := NewCompiler(WithCache(2))

	first, err := c.Compile("Seeders > 1")
	require.NoError(t, err)
	second, err := c.Compile("  Seeders > 1  ")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, _ = c.Compile("Seeders > 2")
	_, _ = c.Compile("Seeders > 3")
	assert.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, NewCompiler().Size())
}

func TestCustomFunctions(t *testing.T) {
	c := NewCompiler(WithCustomFunctions(map[string]any{
		"isLinux": func(title string) bool {
			lower := strings.ToLower(title)
			return strings.Contains(lower, "ubuntu") || strings.Contains(lower, "debian")
		},
	}))

	f, err := c.Compile(`isLinux(Title) and Seeders > 0`)
	require.NoError(t, err)
	assert.Len(t, f.Apply(results), 2)
}

func TestManager(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterFilters(map[string]string{
		"healthy": "Seeders >= 10",
		"small":   "Size < gb(1)",
	}))
	assert.Equal(t, []string{"healthy", "small"}, m.ListFilters())

	f, ok := m.GetFilter("healthy")
	require.True(t, ok)
	assert.Len(t, f.Apply(results), 2)

	err := m.RegisterFilters(map[string]string{"broken": "Seeders >", "fine": "true"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	_, ok = m.GetFilter("fine")
	assert.False(t, ok, "nothing registered when one expression fails")

	require.NoError(t, m.RegisterFilter("any", "true"))
	_, ok = m.GetFilter("any")
	assert.True(t, ok)
}

func TestCompilationErrorPosition(t *testing.T) {
	_, err := NewCompiler().Compile(`Seeders > 0 and Nope`)
	require.Error(t, err)

	var compErr *CompilationError
	require.True(t, errors.As(err, &compErr))
	assert.GreaterOrEqual(t, compErr.Position, 0)
	assert.Contains(t, err.Error(), "Nope")
}
