package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/arrdeck/clients"
	"github.com/s0up4200/arrdeck/config"
)

type identity struct {
	id, name string
}

func (i identity) ID() string   { return i.id }
func (i identity) Name() string { return i.name }

func TestKebab(t *testing.T) {
	cases := map[string]string{
		"Deluge":               "deluge",
		"uTorrent":             "utorrent",
		"qBittorrent (pre4.1)": "qbittorrent-pre4-1",
		"  Some   Client  ":    "some-client",
		"Transmission-GTK":     "transmission-gtk",
		"Déluge Édition":       "deluge-edition",
		"!!!":                  "",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Kebab(in), in)
	}
}

func TestBuiltInClients(t *testing.T) {
	want := map[string]string{
		"qbittorrent":       "qbittorrent-pre4-1",
		"qbittorrent41plus": "qbittorrent",
		"utorrent":          "utorrent",
		"utorrentwebui":     "utorrent",
		"transmission":      "transmission",
		"deluge":            "deluge",
	}

	for _, typ := range config.ClientTypes {
		c, err := clients.New(config.ClientConfig{Type: typ, URL: "http://localhost"})
		require.NoError(t, err)

		p := Wrap(c)
		assert.Equal(t, c.ID(), p.ID())
		assert.Equal(t, c.Name(), p.Name())
		assert.Equal(t, want[typ], p.CSSClass(), typ)
		assert.Equal(t, want[typ]+"-small.png", p.Icon(), typ)
	}
}

func TestAliasWinsOverName(t *testing.T) {
	p := Wrap(identity{id: clients.IDQBittorrent41Plus, name: "Anything Else"})
	assert.Equal(t, Metadata{Slug: "qbittorrent", Icon: "qbittorrent-small.png", CSSClass: "qbittorrent"}, p.Metadata())
}

func TestFallbacks(t *testing.T) {
	assert.Equal(t, "my-client", Wrap(identity{id: "My_Client", name: "???"}).CSSClass())
	assert.Equal(t, "client", Wrap(identity{id: "", name: ""}).CSSClass())
}

func TestSlugHasNoWhitespace(t *testing.T) {
	for _, name := range []string{"A B", "tab\there", "new\nline", "Ünïcödé Nämé"} {
		slug := Wrap(identity{id: "x", name: name}).CSSClass()
		assert.NotContains(t, slug, " ")
		assert.Equal(t, Kebab(slug), slug, "slug is already kebab-case")
	}
}

func TestAliasesIsCopy(t *testing.T) {
	a := Aliases()
	require.Len(t, a, 2)
	a[0].Slug = "mutated"
	assert.Equal(t, "qbittorrent", Aliases()[0].Slug)
}
