package trakt

import "time"

// IDs are the identifiers Trakt knows an item by.
type IDs struct {
	Trakt int64  `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
	TVDB  int64  `json:"tvdb,omitempty"`
}

// Movie is a Trakt movie.
type Movie struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// Show is a Trakt show.
type Show struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// WatchedMovie is an entry of /sync/watched/movies.
type WatchedMovie struct {
	Plays         int       `json:"plays"`
	LastWatchedAt time.Time `json:"last_watched_at"`
	Movie         Movie     `json:"movie"`
}

// WatchedEpisode is an episode inside a watched season.
type WatchedEpisode struct {
	Number        int       `json:"number"`
	Plays         int       `json:"plays"`
	LastWatchedAt time.Time `json:"last_watched_at"`
}

// WatchedSeason groups watched episodes.
type WatchedSeason struct {
	Number   int              `json:"number"`
	Episodes []WatchedEpisode `json:"episodes"`
}

// WatchedShow is an entry of /sync/watched/shows.
type WatchedShow struct {
	Plays         int             `json:"plays"`
	LastWatchedAt time.Time       `json:"last_watched_at"`
	Show          Show            `json:"show"`
	Seasons       []WatchedSeason `json:"seasons"`
}

// EpisodeCount returns the number of distinct watched episodes.
func (w WatchedShow) EpisodeCount() int {
	n := 0
	for _, s := range w.Seasons {
		n += len(s.Episodes)
	}
	return n
}

// HistoryItem marks one movie, show or episode as watched.
type HistoryItem struct {
	WatchedAt *time.Time `json:"watched_at,omitempty"`
	IDs       IDs        `json:"ids"`
}

// HistoryRequest is the body of POST /sync/history.
type HistoryRequest struct {
	Movies   []HistoryItem `json:"movies,omitempty"`
	Shows    []HistoryItem `json:"shows,omitempty"`
	Episodes []HistoryItem `json:"episodes,omitempty"`
}

// Empty reports whether the request has nothing to add.
func (r HistoryRequest) Empty() bool {
	return len(r.Movies) == 0 && len(r.Shows) == 0 && len(r.Episodes) == 0
}

// HistoryCounts counts items per type.
type HistoryCounts struct {
	Movies   int `json:"movies"`
	Episodes int `json:"episodes"`
}

// HistoryResponse is the reply of POST /sync/history.
type HistoryResponse struct {
	Added    HistoryCounts `json:"added"`
	NotFound struct {
		Movies   []HistoryItem `json:"movies"`
		Shows    []HistoryItem `json:"shows"`
		Episodes []HistoryItem `json:"episodes"`
	} `json:"not_found"`
}

// UserSettings is the subset of /users/settings used to verify credentials.
type UserSettings struct {
	User struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		VIP      bool   `json:"vip"`
	} `json:"user"`
}
