package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/arrdeck/magnet"
)

const sampleHash = "C12FE1C06BBA254A9DC9F519B335AA7C1367A88A"

func serve(t *testing.T, status int, contentType, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestThePirateBay(t *testing.T) {
	body := `[
		{"id":"1","name":"Ubuntu 24.04 Desktop","info_hash":"c12fe1c06bba254a9dc9f519b335aa7c1367a88a","seeders":"150","leechers":"12","size":"6114656256"},
		{"id":"2","name":"","info_hash":"0123456789abcdef0123456789abcdef01234567","seeders":"1","leechers":"0","size":"1"},
		{"id":"3","name":"Broken","info_hash":"nothex","seeders":"1","leechers":"0","size":"1"}
	]`
	server := serve(t, http.StatusOK, "application/json", body, func(r *http.Request) {
		assert.Equal(t, "/q.php", r.URL.Path)
		assert.Equal(t, "ubuntu 24.04", r.URL.Query().Get("q"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
	})

	e := NewThePirateBay(server.URL, WithUserAgent("test-agent"))
	results, err := e.Search(context.Background(), "ubuntu 24.04")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "Ubuntu 24.04 Desktop", r.Title)
	assert.Equal(t, magnet.InfoHash(sampleHash), r.InfoHash)
	assert.Equal(t, int64(6114656256), r.Size)
	assert.Equal(t, 150, r.Seeders)
	assert.Equal(t, 12, r.Leechers)
	assert.Equal(t, magnet.InfoHash(sampleHash), magnet.ExtractInfoHash(r.Link))
}

func TestThePirateBayNoResults(t *testing.T) {
	body := `[{"id":"0","name":"No results returned","info_hash":"0000000000000000000000000000000000000000","leechers":"0","seeders":"0","size":"0"}]`
	server := serve(t, http.StatusOK, "application/json", body, nil)

	results, err := NewThePirateBay(server.URL).Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestThePirateBayErrors(t *testing.T) {
	server := serve(t, http.StatusOK, "text/html", "<html>blocked</html>", nil)
	_, err := NewThePirateBay(server.URL).Search(context.Background(), "q")
	assert.True(t, IsParseError(err))

	server = serve(t, http.StatusBadGateway, "text/plain", "bad gateway", nil)
	_, err = NewThePirateBay(server.URL).Search(context.Background(), "q")
	assert.True(t, IsNetworkError(err))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestTorrentsCSV(t *testing.T) {
	wrapped := `{"torrents":[{"infohash":"c12fe1c06bba254a9dc9f519b335aa7c1367a88a","name":"Debian 12","size_bytes":700000000,"seeders":40,"leechers":3}],"next":null}`
	server := serve(t, http.StatusOK, "application/json", wrapped, func(r *http.Request) {
		assert.Equal(t, "/service/search", r.URL.Path)
	})

	results, err := NewTorrentsCSV(server.URL).Search(context.Background(), "debian")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Debian 12", results[0].Title)
	assert.Equal(t, int64(700000000), results[0].Size)
	assert.Equal(t, 40, results[0].Seeders)

	bare := `[{"infohash":"c12fe1c06bba254a9dc9f519b335aa7c1367a88a","name":"Debian 12","size_bytes":1,"seeders":1,"leechers":0},{"name":"no hash"}]`
	server = serve(t, http.StatusOK, "application/json", bare, nil)
	results, err = NewTorrentsCSV(server.URL).Search(context.Background(), "debian")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestNyaa(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:atom="http://www.w3.org/2005/Atom" xmlns:nyaa="https://nyaa.si/xmlns/nyaa" version="2.0">
  <channel>
    <title>Nyaa - "frieren" - Torrent File RSS</title>
    <item>
      <title>[Group] Frieren - 01 [1080p]</title>
      <link>https://nyaa.si/download/1.torrent</link>
      <nyaa:seeders>321</nyaa:seeders>
      <nyaa:leechers>7</nyaa:leechers>
      <nyaa:infoHash>c12fe1c06bba254a9dc9f519b335aa7c1367a88a</nyaa:infoHash>
      <nyaa:size>1.4 GiB</nyaa:size>
    </item>
    <item>
      <title>[Group] Frieren - 02 [1080p]</title>
      <link>https://nyaa.si/download/2.torrent</link>
      <nyaa:seeders>bad</nyaa:seeders>
      <nyaa:size>700 MiB</nyaa:size>
    </item>
    <item>
      <title></title>
    </item>
  </channel>
</rss>`
	server := serve(t, http.StatusOK, "application/rss+xml", body, func(r *http.Request) {
		assert.Equal(t, "rss", r.URL.Query().Get("page"))
		assert.Equal(t, "frieren", r.URL.Query().Get("q"))
	})

	results, err := NewNyaa(server.URL).Search(context.Background(), "frieren")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 321, results[0].Seeders)
	assert.Equal(t, 7, results[0].Leechers)
	assert.Equal(t, magnet.InfoHash(sampleHash), results[0].InfoHash)
	assert.Contains(t, results[0].Link, "magnet:?xt=urn:btih:")
	assert.Equal(t, int64(1503238553), results[0].Size)

	assert.Equal(t, 0, results[1].Seeders)
	assert.Equal(t, "https://nyaa.si/download/2.torrent", results[1].Link)
	assert.Equal(t, int64(734003200), results[1].Size)
}

func TestNyaaMalformedFeed(t *testing.T) {
	server := serve(t, http.StatusOK, "application/rss+xml", "<rss><channel><item>", nil)
	_, err := NewNyaa(server.URL).Search(context.Background(), "x")
	assert.True(t, IsParseError(err))
}

func TestTorznab(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:torznab="http://torznab.com/schemas/2015/feed">
  <channel>
    <item>
      <title>Some.Show.S01E01.1080p</title>
      <link>http://jackett/dl/1</link>
      <size>1000</size>
      <enclosure url="http://jackett/dl/1.torrent" length="1000" type="application/x-bittorrent"/>
      <torznab:attr name="seeders" value="10"/>
      <torznab:attr name="peers" value="15"/>
      <torznab:attr name="infohash" value="c12fe1c06bba254a9dc9f519b335aa7c1367a88a"/>
    </item>
    <item>
      <title>Other.Show.S01E01</title>
      <torznab:attr name="magneturl" value="magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567"/>
      <torznab:attr name="size" value="2000"/>
      <torznab:attr name="seeders" value="3"/>
      <torznab:attr name="leechers" value="1"/>
    </item>
  </channel>
</rss>`
	server := serve(t, http.StatusOK, "application/xml", body, func(r *http.Request) {
		assert.Equal(t, "search", r.URL.Query().Get("t"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
	})

	e := NewTorznab("jackett", server.URL+"/api", "secret")
	assert.Equal(t, "jackett", e.Name())

	results, err := e.Search(context.Background(), "some show")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "http://jackett/dl/1.torrent", results[0].Link)
	assert.Equal(t, 10, results[0].Seeders)
	assert.Equal(t, 5, results[0].Leechers)
	assert.Equal(t, magnet.InfoHash(sampleHash), results[0].InfoHash)

	assert.Equal(t, int64(2000), results[1].Size)
	assert.Equal(t, 1, results[1].Leechers)
	assert.Equal(t, magnet.InfoHash("0123456789ABCDEF0123456789ABCDEF01234567"), results[1].InfoHash)
}

func TestTorznabUnreadableSizes(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:torznab="http://torznab.com/schemas/2015/feed">
  <channel>
    <item>
      <title>Good.Release</title>
      <size>1000</size>
      <enclosure url="http://jackett/dl/1.torrent" length="1000"/>
    </item>
    <item>
      <title>Human.Size.Release</title>
      <size>1.4 GB</size>
      <enclosure url="http://jackett/dl/2.torrent" length="n/a"/>
    </item>
    <item>
      <title>Broken.Size.Release</title>
      <size>huge</size>
      <enclosure url="http://jackett/dl/3.torrent" length="n/a"/>
    </item>
  </channel>
</rss>`
	server := serve(t, http.StatusOK, "application/xml", body, nil)

	results, err := NewTorznab("jackett", server.URL, "").Search(context.Background(), "release")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int64(1000), results[0].Size)
	assert.Equal(t, int64(1_400_000_000), results[1].Size)
	assert.Zero(t, results[2].Size)
	assert.Equal(t, "http://jackett/dl/3.torrent", results[2].Link)
}

func TestTorznabErrorDocument(t *testing.T) {
	server := serve(t, http.StatusOK, "application/xml", `<error code="100" description="Invalid API Key"/>`, nil)
	_, err := NewTorznab("jackett", server.URL, "bad").Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestFetcherHonoursContext(t *testing.T) {
	server := serve(t, http.StatusOK, "application/json", "[]", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewThePirateBay(server.URL).Search(ctx, "q")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}
