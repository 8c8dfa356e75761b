package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/s0up4200/arrdeck/magnet"
)

// ThePirateBayName is the registry name of the ThePirateBay engine.
const ThePirateBayName = "ThePirateBay"

// DefaultThePirateBayURL is the apibay JSON API.
const DefaultThePirateBayURL = "https://apibay.org"

var thePirateBayTrackers = []string{
	"udp://tracker.opentrackr.org:1337/announce",
	"udp://open.stealth.si:80/announce",
	"udp://tracker.torrent.eu.org:451/announce",
	"udp://exodus.desync.com:6969/announce",
}

// ThePirateBay searches apibay's q.php endpoint.
type ThePirateBay struct {
	baseURL string
	fetch   *fetcher
}

// NewThePirateBay creates the engine. An empty baseURL uses DefaultThePirateBayURL.
func NewThePirateBay(baseURL string, opts ...EngineOption) *ThePirateBay {
	if baseURL == "" {
		baseURL = DefaultThePirateBayURL
	}
	return &ThePirateBay{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   newFetcher(ThePirateBayName, newEngineOptions(opts)),
	}
}

// Name returns the engine name
func (e *ThePirateBay) Name() string { return ThePirateBayName }

// Search queries apibay. The API answers "no results" with a single row whose
// id is "0"; that row is dropped.
func (e *ThePirateBay) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := e.fetch.get(ctx, e.baseURL+"/q.php", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, parseError(e.Name(), fmt.Errorf("response is not valid JSON"))
	}
	rows := gjson.ParseBytes(body)
	if !rows.IsArray() {
		return nil, parseError(e.Name(), fmt.Errorf("expected a JSON array"))
	}

	var results []Result
	rows.ForEach(func(_, row gjson.Result) bool {
		if row.Get("id").String() == "0" {
			return true
		}

		name := strings.TrimSpace(row.Get("name").String())
		hash := magnet.ExtractInfoHash(row.Get("info_hash").String())
		if name == "" || hash == "" {
			e.fetch.logger.Debug().Str("row", row.Raw).Msg("skipping malformed result")
			return true
		}

		link, err := magnet.Build(hash, name, thePirateBayTrackers...)
		if err != nil {
			e.fetch.logger.Debug().Err(err).Msg("skipping result with unusable hash")
			return true
		}

		results = append(results, Result{
			Title:    name,
			Link:     link,
			Size:     row.Get("size").Int(),
			Seeders:  int(row.Get("seeders").Int()),
			Leechers: int(row.Get("leechers").Int()),
			InfoHash: hash,
		})
		return true
	})

	return results, nil
}
