package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestEngineNames(t *testing.T) {
	registered := []string{"ThePirateBay", "Nyaa", "TorrentsCSV"}

	assert.Equal(t, []string{"ThePirateBay", "Nyaa"}, engineNames(registered, []string{"thepiratebay", "NYAA"}))
	assert.Equal(t, []string{"Jackett"}, engineNames(registered, []string{"Jackett"}))
	assert.Empty(t, engineNames(registered, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 58))

	long := strings.Repeat("é", 60)
	got := truncate(long, 58)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 58, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
