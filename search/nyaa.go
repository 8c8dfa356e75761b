package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/s0up4200/arrdeck/magnet"
)

// NyaaName is the registry name of the Nyaa engine.
const NyaaName = "Nyaa"

// DefaultNyaaURL is the Nyaa site.
const DefaultNyaaURL = "https://nyaa.si"

var nyaaTrackers = []string{
	"http://nyaa.tracker.wf:7777/announce",
	"udp://open.stealth.si:80/announce",
	"udp://tracker.opentrackr.org:1337/announce",
}

type nyaaFeed struct {
	Channel struct {
		Items []nyaaItem `xml:"item"`
	} `xml:"channel"`
}

type nyaaItem struct {
	Title    string `xml:"title"`
	Link     string `xml:"link"`
	Seeders  string `xml:"https://nyaa.si/xmlns/nyaa seeders"`
	Leechers string `xml:"https://nyaa.si/xmlns/nyaa leechers"`
	InfoHash string `xml:"https://nyaa.si/xmlns/nyaa infoHash"`
	Size     string `xml:"https://nyaa.si/xmlns/nyaa size"`
}

// Nyaa searches the Nyaa RSS feed.
type Nyaa struct {
	baseURL string
	fetch   *fetcher
}

// NewNyaa creates the engine. An empty baseURL uses DefaultNyaaURL.
func NewNyaa(baseURL string, opts ...EngineOption) *Nyaa {
	if baseURL == "" {
		baseURL = DefaultNyaaURL
	}
	return &Nyaa{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   newFetcher(NyaaName, newEngineOptions(opts)),
	}
}

// Name returns the engine name
func (e *Nyaa) Name() string { return NyaaName }

// Search reads ?page=rss&q=query, sorted by seeders.
func (e *Nyaa) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := e.fetch.get(ctx, e.baseURL+"/", url.Values{
		"page": {"rss"},
		"q":    {query},
		"s":    {"seeders"},
		"o":    {"desc"},
	})
	if err != nil {
		return nil, err
	}

	var feed nyaaFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, parseError(e.Name(), fmt.Errorf("failed to decode rss: %w", err))
	}

	results := make([]Result, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			e.fetch.logger.Debug().Msg("skipping item without title")
			continue
		}

		r := Result{
			Title:    title,
			Link:     strings.TrimSpace(item.Link),
			Seeders:  atoi(item.Seeders),
			Leechers: atoi(item.Leechers),
		}
		if size, err := humanize.ParseBytes(item.Size); err == nil {
			r.Size = int64(size)
		}
		if hash := magnet.ExtractInfoHash(item.InfoHash); hash != "" {
			r.InfoHash = hash
			if link, err := magnet.Build(hash, title, nyaaTrackers...); err == nil {
				r.Link = link
			}
		}
		if r.Link == "" {
			e.fetch.logger.Debug().Str("title", title).Msg("skipping item without link")
			continue
		}

		results = append(results, r)
	}

	return results, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
