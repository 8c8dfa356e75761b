package qbittorrent

import (
	"strings"
	"time"
)

// TorrentInfo contains information about a torrent
type TorrentInfo struct {
	Hash           string
	Name           string
	SavePath       string
	ContentPath    string
	State          string
	Size           int64
	Progress       float64
	DownloadedSize int64
	UploadedSize   int64
	Ratio          float64
	AddedOn        time.Time
	CompletionOn   time.Time
	Category       string
	Tags           []string
	IsSeeding      bool
}

// IsActivelySeeding checks if the torrent is actively seeding
func (t *TorrentInfo) IsActivelySeeding() bool {
	return t.State == "uploading" || t.State == "stalledUP" || t.State == "queuedUP" || t.State == "forcedUP"
}

// AddOptions are optional parameters for adding a torrent.
type AddOptions struct {
	Category string
	SavePath string
	Tags     []string
	Paused   bool
}

func (o AddOptions) params() map[string]string {
	params := make(map[string]string)
	if o.Category != "" {
		params["category"] = o.Category
	}
	if o.SavePath != "" {
		params["savepath"] = o.SavePath
	}
	if len(o.Tags) > 0 {
		params["tags"] = strings.Join(o.Tags, ",")
	}
	if o.Paused {
		params["paused"] = "true"
		params["stopped"] = "true"
	}
	return params
}
