// Package trakt is a client for the Trakt API that surfaces rate limiting as
// a typed condition instead of retrying behind the caller's back.
//
// Every call classifies the upstream response. A 429 becomes a
// *RateLimitError carrying the server's Retry-After in seconds (60 when the
// header is missing or unreadable). Authentication failures, server errors
// and transport failures wrap ErrUnauthorized, ErrServer and ErrNetwork.
// Classify maps any returned error to an Outcome for exhaustive switches:
//
//	shows, err := client.GetWatchedShows(ctx)
//	switch trakt.Classify(err) {
//	case trakt.OutcomeOK:
//	case trakt.OutcomeRateLimited:
//	    var rl *trakt.RateLimitError
//	    errors.As(err, &rl)
//	    time.Sleep(rl.Wait())
//	...
//	}
//
// Processes that want every client to respect one shared back-off can attach
// a Cooldown with WithCooldown.
package trakt
