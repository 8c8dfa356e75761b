// Package qbittorrent provides a client for the qBittorrent 4.1+ Web API (v2).
//
// It wraps the autobrr/go-qbittorrent library with the handful of operations
// the torrent client layer needs: login, version probing, listing, adding
// magnets and deleting torrents. Hashes are returned upper-cased so they
// compare equal to magnet.InfoHash values.
//
// # Usage
//
//	client := qbittorrent.NewClient(url, username, password, logger)
//	if err := client.Login(ctx); err != nil {
//	    return err
//	}
//
//	torrents, err := client.GetAllTorrents(ctx)
package qbittorrent
