package clients

import (
	"context"
	"strings"

	"github.com/s0up4200/arrdeck/magnet"
)

// Backend identifiers. These are persisted and matched by presentation aliases.
const (
	IDQBittorrent       = "qbittorrent"
	IDQBittorrent41Plus = "qbittorrent41plus"
	IDUTorrent          = "utorrent"
	IDUTorrentWebUI     = "utorrentwebui"
	IDTransmission      = "transmission"
	IDDeluge            = "deluge"
)

// Identity is the part of a client that never touches the network.
type Identity interface {
	// ID returns the stable lowercase identifier of the backend family and version.
	ID() string
	// Name returns the human readable backend name.
	Name() string
}

// Client controls one torrent client instance.
type Client interface {
	Identity

	// Connect authenticates against the backend and verifies it is reachable.
	Connect(ctx context.Context) error
	// AddMagnet submits a magnet link (or bare info hash) and returns its hash.
	AddMagnet(ctx context.Context, uri string) (magnet.InfoHash, error)
	// Remove deletes a torrent, optionally with its downloaded data.
	Remove(ctx context.Context, hash magnet.InfoHash, deleteFiles bool) error
	// List returns every torrent the backend knows about.
	List(ctx context.Context) ([]Torrent, error)
}

// Torrent is a backend-neutral view of a torrent.
type Torrent struct {
	Hash     magnet.InfoHash `json:"hash"`
	Name     string          `json:"name"`
	Progress float64         `json:"progress"` // 0..1
	State    string          `json:"state"`
	Size     int64           `json:"size"`
}

// Done reports whether the torrent finished downloading.
func (t Torrent) Done() bool {
	return t.Progress >= 1
}

// magnetLink validates input and returns its hash and a magnet URI for it.
// Bare hashes are expanded to a minimal magnet link.
func magnetLink(input string) (magnet.InfoHash, string, error) {
	hash := magnet.ExtractInfoHash(input)
	if hash == "" {
		return "", "", ErrInvalidMagnet
	}

	if isMagnetURI(input) {
		return hash, input, nil
	}

	uri, err := magnet.Build(hash, "")
	if err != nil {
		return "", "", err
	}
	return hash, uri, nil
}

func isMagnetURI(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "magnet:?")
}
