package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/s0up4200/arrdeck/magnet"
)

// TorrentsCSVName is the registry name of the Torrents-CSV engine.
const TorrentsCSVName = "TorrentsCSV"

// DefaultTorrentsCSVURL is the public Torrents-CSV instance.
const DefaultTorrentsCSVURL = "https://torrents-csv.com"

// TorrentsCSV searches a Torrents-CSV instance.
type TorrentsCSV struct {
	baseURL string
	fetch   *fetcher
}

// NewTorrentsCSV creates the engine. An empty baseURL uses DefaultTorrentsCSVURL.
func NewTorrentsCSV(baseURL string, opts ...EngineOption) *TorrentsCSV {
	if baseURL == "" {
		baseURL = DefaultTorrentsCSVURL
	}
	return &TorrentsCSV{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   newFetcher(TorrentsCSVName, newEngineOptions(opts)),
	}
}

// Name returns the engine name
func (e *TorrentsCSV) Name() string { return TorrentsCSVName }

// Search queries /service/search. Newer servers wrap rows in {"torrents": [...]},
// older ones return the bare array.
func (e *TorrentsCSV) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := e.fetch.get(ctx, e.baseURL+"/service/search", url.Values{"q": {query}, "size": {"100"}})
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, parseError(e.Name(), fmt.Errorf("response is not valid JSON"))
	}
	rows := gjson.ParseBytes(body)
	if !rows.IsArray() {
		rows = rows.Get("torrents")
	}
	if !rows.IsArray() {
		return nil, parseError(e.Name(), fmt.Errorf("no torrents array in response"))
	}

	var results []Result
	rows.ForEach(func(_, row gjson.Result) bool {
		name := strings.TrimSpace(row.Get("name").String())
		hash := magnet.ExtractInfoHash(row.Get("infohash").String())
		if name == "" || hash == "" {
			e.fetch.logger.Debug().Str("row", row.Raw).Msg("skipping malformed result")
			return true
		}

		link, err := magnet.Build(hash, name)
		if err != nil {
			return true
		}

		results = append(results, Result{
			Title:    name,
			Link:     link,
			Size:     row.Get("size_bytes").Int(),
			Seeders:  int(row.Get("seeders").Int()),
			Leechers: int(row.Get("leechers").Int()),
			InfoHash: hash,
		})
		return true
	})

	return results, nil
}
