package search

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/s0up4200/arrdeck/magnet"
)

type torznabFeed struct {
	Items []torznabItem `xml:"channel>item"`
}

type torznabItem struct {
	Title     string `xml:"title"`
	Link      string `xml:"link"`
	Size      string `xml:"size"`
	Enclosure struct {
		URL    string `xml:"url,attr"`
		Length string `xml:"length,attr"`
	} `xml:"enclosure"`
	Attrs []torznabAttr `xml:"http://torznab.com/schemas/2015/feed attr"`
}

type torznabAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type torznabError struct {
	Code        string `xml:"code,attr"`
	Description string `xml:"description,attr"`
	Message     string `xml:",chardata"`
}

func (it torznabItem) attr(name string) string {
	for _, a := range it.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value
		}
	}
	return ""
}

// Torznab searches a Jackett or Prowlarr torznab endpoint.
type Torznab struct {
	name     string
	endpoint string
	apiKey   string
	fetch    *fetcher
}

// NewTorznab creates an engine for the torznab endpoint (the URL ending in /api
// or /torznab).
func NewTorznab(name, endpoint, apiKey string, opts ...EngineOption) *Torznab {
	return &Torznab{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		fetch:    newFetcher(name, newEngineOptions(opts)),
	}
}

// Name returns the engine name
func (e *Torznab) Name() string { return e.name }

// Search runs t=search against the endpoint.
func (e *Torznab) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{"t": {"search"}, "q": {query}}
	if e.apiKey != "" {
		params.Set("apikey", e.apiKey)
	}

	body, err := e.fetch.get(ctx, e.endpoint, params)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("<error")) {
		var te torznabError
		if err := xml.Unmarshal(body, &te); err != nil {
			return nil, parseError(e.name, fmt.Errorf("failed to decode torznab error: %w", err))
		}
		msg := te.Description
		if msg == "" {
			msg = strings.TrimSpace(te.Message)
		}
		return nil, networkError(e.name, fmt.Errorf("torznab error %s: %s", te.Code, msg))
	}

	var feed torznabFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, parseError(e.name, fmt.Errorf("failed to decode rss: %w", err))
	}

	results := make([]Result, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		r := Result{
			Title:    title,
			Size:     itemSize(item),
			Seeders:  atoi(item.attr("seeders")),
			Leechers: leechers(item),
			InfoHash: magnet.ExtractInfoHash(item.attr("infohash")),
		}

		switch {
		case item.attr("magneturl") != "":
			r.Link = item.attr("magneturl")
		case item.Enclosure.URL != "":
			r.Link = item.Enclosure.URL
		default:
			r.Link = strings.TrimSpace(item.Link)
		}
		if r.InfoHash == "" && strings.HasPrefix(r.Link, "magnet:") {
			r.InfoHash = magnet.ExtractInfoHash(r.Link)
		}
		if r.Link == "" {
			e.fetch.logger.Debug().Str("title", title).Msg("skipping item without link")
			continue
		}

		results = append(results, r)
	}

	return results, nil
}

// itemSize takes the first readable of <size>, the size attr and the
// enclosure length. Unreadable values leave the size at 0.
func itemSize(item torznabItem) int64 {
	for _, v := range []string{item.Size, item.attr("size"), item.Enclosure.Length} {
		if n := parseSize(v); n > 0 {
			return n
		}
	}
	return 0
}

// parseSize reads a byte count, accepting human forms such as "1.4 GB".
func parseSize(v string) int64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if n, err := humanize.ParseBytes(v); err == nil && n <= math.MaxInt64 {
		return int64(n)
	}
	return 0
}

// leechers prefers the explicit attribute and falls back to peers minus seeders.
func leechers(item torznabItem) int {
	if v := item.attr("leechers"); v != "" {
		return atoi(v)
	}
	peers := atoi(item.attr("peers"))
	seeders := atoi(item.attr("seeders"))
	if peers > seeders {
		return peers - seeders
	}
	return 0
}
