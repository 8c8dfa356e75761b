package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"

	"github.com/s0up4200/arrdeck/trakt"
)

var retries uint

// traktCmd represents the trakt command
var traktCmd = &cobra.Command{
	Use:   "trakt",
	Short: "Talk to the Trakt API",
}

var traktTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the Trakt credentials",
	RunE:  runTraktTest,
}

var traktSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch watched shows and movies, waiting out rate limits",
	Long: `Fetch the watched history from Trakt.

When Trakt answers 429 the command waits for the Retry-After period the server
asked for and tries again, up to --retries times.`,
	RunE: runTraktSync,
}

func init() {
	rootCmd.AddCommand(traktCmd)
	traktCmd.AddCommand(traktTestCmd, traktSyncCmd)

	traktSyncCmd.Flags().UintVar(&retries, "retries", 3, "attempts per request when rate limited or unavailable")
}

func newTraktClient(cooldown *trakt.Cooldown) (*trakt.Client, error) {
	if !cfg.Trakt.Enabled {
		return nil, fmt.Errorf("trakt is not enabled. Please set trakt.enabled in config")
	}

	opts := []trakt.Option{trakt.WithUserAgent(cfg.Search.UserAgent)}
	if cooldown != nil {
		opts = append(opts, trakt.WithCooldown(cooldown))
	}

	return trakt.NewClient(trakt.Config{
		URL:         cfg.Trakt.URL,
		ClientID:    cfg.Trakt.ClientID,
		AccessToken: cfg.Trakt.AccessToken,
	}, logger, opts...)
}

func runTraktTest(cmd *cobra.Command, args []string) error {
	client, err := newTraktClient(nil)
	if err != nil {
		return err
	}

	settings, err := client.TestConnection(cmd.Context())
	switch trakt.Classify(err) {
	case trakt.OutcomeOK:
		fmt.Printf("✓ Connected to Trakt as %s\n", settings.User.Username)
		return nil
	case trakt.OutcomeRateLimited:
		var rl *trakt.RateLimitError
		errors.As(err, &rl)
		return fmt.Errorf("rate limited by Trakt, try again in %s", rl.Wait())
	case trakt.OutcomeUnauthorized:
		return fmt.Errorf("trakt rejected the credentials: %w", err)
	default:
		return err
	}
}

// withRetry runs fn until it succeeds, fails permanently or runs out of
// attempts. Rate limits wait for the server's Retry-After.
func withRetry(cmd *cobra.Command, what string, fn func() error) error {
	return retry.Do(fn,
		retry.Context(cmd.Context()),
		retry.Attempts(max(retries, 1)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return trakt.Classify(err).Retryable()
		}),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			var rl *trakt.RateLimitError
			if errors.As(err, &rl) {
				return rl.Wait()
			}
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Err(err).Str("request", what).Uint("attempt", n+1).
				Str("outcome", trakt.Classify(err).String()).Msg("Retrying Trakt request")
		}),
	)
}

func runTraktSync(cmd *cobra.Command, args []string) error {
	client, err := newTraktClient(trakt.NewCooldown())
	if err != nil {
		return err
	}

	var shows []trakt.WatchedShow
	if err := withRetry(cmd, "watched shows", func() error {
		var err error
		shows, err = client.GetWatchedShows(cmd.Context())
		return err
	}); err != nil {
		return err
	}

	var movies []trakt.WatchedMovie
	if err := withRetry(cmd, "watched movies", func() error {
		var err error
		movies, err = client.GetWatchedMovies(cmd.Context())
		return err
	}); err != nil {
		return err
	}

	episodes := 0
	for _, s := range shows {
		episodes += s.EpisodeCount()
	}

	fmt.Printf("✓ Synced %d shows (%d episodes) and %d movies from Trakt\n", len(shows), episodes, len(movies))
	if verbose {
		for _, s := range shows {
			fmt.Printf("  • %s (%d) %d episodes, last %s\n", s.Show.Title, s.Show.Year, s.EpisodeCount(), s.LastWatchedAt.Format("2006-01-02"))
		}
		for _, m := range movies {
			fmt.Printf("  • %s (%d) %d plays\n", m.Movie.Title, m.Movie.Year, m.Plays)
		}
	}

	return nil
}
