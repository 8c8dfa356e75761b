// Package presentation derives display metadata (slug, icon file, CSS class)
// for torrent clients from their identity.
package presentation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/s0up4200/arrdeck/clients"
)

// Alias maps a client id to the slug of the family it shares artwork with.
type Alias struct {
	ID   string
	Slug string
}

// aliases is checked in order before falling back to the kebab-cased name.
var aliases = []Alias{
	{ID: clients.IDQBittorrent41Plus, Slug: "qbittorrent"},
	{ID: clients.IDUTorrentWebUI, Slug: "utorrent"},
}

const fallbackSlug = "client"

// Aliases returns a copy of the alias table in lookup order.
func Aliases() []Alias {
	out := make([]Alias, len(aliases))
	copy(out, aliases)
	return out
}

// Metadata is the display metadata of a client.
type Metadata struct {
	Slug     string `json:"slug"`
	Icon     string `json:"icon"`
	CSSClass string `json:"css_class"`
}

// Client decorates a client identity with display metadata. Values are
// recomputed on every call so they always follow the wrapped identity.
type Client struct {
	identity clients.Identity
}

// Wrap decorates c.
func Wrap(c clients.Identity) *Client {
	return &Client{identity: c}
}

// ID returns the wrapped client's id.
func (c *Client) ID() string { return c.identity.ID() }

// Name returns the wrapped client's name.
func (c *Client) Name() string { return c.identity.Name() }

// Slug returns the alias slug for the id, or the kebab-cased name.
func (c *Client) Slug() string {
	return Slug(c.identity.ID(), c.identity.Name())
}

// Icon returns the small icon file name.
func (c *Client) Icon() string {
	return c.Slug() + "-small.png"
}

// CSSClass returns the CSS class.
func (c *Client) CSSClass() string {
	return c.Slug()
}

// Metadata returns slug, icon and CSS class together.
func (c *Client) Metadata() Metadata {
	slug := c.Slug()
	return Metadata{
		Slug:     slug,
		Icon:     slug + "-small.png",
		CSSClass: slug,
	}
}

// Slug computes the slug for an id and display name.
func Slug(id, name string) string {
	for _, a := range aliases {
		if a.ID == id {
			return a.Slug
		}
	}
	if s := Kebab(name); s != "" {
		return s
	}
	if s := Kebab(id); s != "" {
		return s
	}
	return fallbackSlug
}

// Kebab lower-cases s, folds accented letters to their base form and joins
// runs of letters and digits with single hyphens. "qBittorrent (pre4.1)"
// becomes "qbittorrent-pre4-1".
func Kebab(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if isSlugRune(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
