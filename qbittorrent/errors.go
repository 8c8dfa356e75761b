package qbittorrent

import "errors"

var (
	// ErrTorrentNotFound means no torrent has the requested hash.
	ErrTorrentNotFound = errors.New("torrent not found")

	// ErrInvalidHash means a hash is not 40 hexadecimal characters.
	ErrInvalidHash = errors.New("invalid torrent hash")

	// ErrConnectionFailed wraps login failures.
	ErrConnectionFailed = errors.New("connection to qBittorrent failed")

	// ErrAddFailed wraps errors from the add endpoint.
	ErrAddFailed = errors.New("qBittorrent rejected torrent")
)
