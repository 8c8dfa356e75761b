package magnet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

// HashLength is the length of a hex encoded v1 info hash.
const HashLength = 40

// ErrInvalidInfoHash is returned when a hash is not 40 hexadecimal characters.
var ErrInvalidInfoHash = errors.New("invalid info hash")

var hashPattern = regexp.MustCompile(`[0-9A-Fa-f]{40}`)

// InfoHash is a 40 character, upper-case hexadecimal info hash.
// The zero value means no hash could be extracted.
type InfoHash string

// String returns the hash as-is.
func (h InfoHash) String() string {
	return string(h)
}

// Lower returns the lowercase form used by most client web APIs.
func (h InfoHash) Lower() string {
	return strings.ToLower(string(h))
}

// Valid reports whether h is exactly 40 upper-case hex characters.
func (h InfoHash) Valid() bool {
	if len(h) != HashLength {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// ExtractInfoHash returns the first 40 consecutive hexadecimal characters
// found anywhere in input, upper-cased. The match is not anchored to the
// xt=urn:btih: parameter, so bare hashes and longer hex runs match too.
// It returns an empty InfoHash when nothing matches.
func ExtractInfoHash(input string) InfoHash {
	return InfoHash(strings.ToUpper(hashPattern.FindString(input)))
}

// Build creates a magnet URI for hash with an optional display name and trackers.
func Build(hash InfoHash, displayName string, trackers ...string) (string, error) {
	if !hash.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidInfoHash, string(hash))
	}

	m := metainfo.Magnet{
		InfoHash:    metainfo.NewHashFromHex(string(hash)),
		DisplayName: displayName,
		Trackers:    trackers,
	}

	return m.String(), nil
}

// InfoHashFromTorrent decodes a .torrent file and returns its info hash and name.
func InfoHashFromTorrent(r io.Reader) (InfoHash, string, error) {
	mi, err := metainfo.Load(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode torrent: %w", err)
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return "", "", fmt.Errorf("failed to decode torrent info: %w", err)
	}

	hash := InfoHash(strings.ToUpper(mi.HashInfoBytes().HexString()))
	return hash, info.Name, nil
}
