package cmd

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/s0up4200/arrdeck/filter"
	"github.com/s0up4200/arrdeck/search"
)

var (
	filterExpr string
	preset     string
	engines    []string
	limit      int
	sortBy     string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every enabled engine at once",
	Long: `Query all configured search engines concurrently and print the merged results.

Engines that fail or time out are reported but do not stop the search. Results
can be narrowed with a filter expression, for example:

  arrdeck search ubuntu --filter 'Seeders > 10 and Size < gb(8)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	searchCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	searchCmd.Flags().StringSliceVarP(&engines, "engine", "e", nil, "only query these engines")
	searchCmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n results")
	searchCmd.Flags().StringVar(&sortBy, "sort", "", "sort by seeders or size (default: engine order)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	f, err := getFilter()
	if err != nil {
		return err
	}

	reg, err := search.DefaultRegistry(cfg.Search, search.WithEngineLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build search engines: %w", err)
	}
	if len(engines) > 0 {
		reg, err = reg.Subset(engineNames(reg.Names(), engines)...)
		if err != nil {
			return err
		}
	}

	agg := search.NewAggregator(reg, logger, search.WithEngineTimeout(cfg.Search.Timeout))

	logger.Info().Str("query", query).Strs("engines", agg.Names()).Msg("Searching")

	resp, err := agg.Search(cmd.Context(), query)
	if err != nil {
		var allFailed *search.AllEnginesFailedError
		if errors.As(err, &allFailed) {
			printFailures(allFailed.Failures)
		}
		return err
	}

	if f != nil {
		resp = resp.Filter(f)
	}

	results := resp.Results
	switch sortBy {
	case "":
	case "seeders":
		slices.SortStableFunc(results, func(a, b search.Result) int { return cmp.Compare(b.Seeders, a.Seeders) })
	case "size":
		slices.SortStableFunc(results, func(a, b search.Result) int { return cmp.Compare(b.Size, a.Size) })
	default:
		return fmt.Errorf("invalid sort %q (must be 'seeders' or 'size')", sortBy)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	printFailures(resp.Failures)

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("\nFound %d results:\n", len(results))
	fmt.Println(strings.Repeat("━", 100))
	fmt.Printf("%-60s %10s %6s %6s  %s\n", "TITLE", "SIZE", "SEED", "LEECH", "ENGINE")
	fmt.Println(strings.Repeat("━", 100))

	for _, r := range results {
		title := truncate(r.Title, 58)
		size := "-"
		if r.Size > 0 {
			size = humanize.IBytes(uint64(r.Size))
		}
		fmt.Printf("%-60s %10s %6d %6d  %s\n", title, size, r.Seeders, r.Leechers, r.Engine)
		if verbose {
			fmt.Printf("  %s\n", r.Link)
		}
	}

	return nil
}

func printFailures(failures []search.EngineFailure) {
	for _, f := range failures {
		kind := "error"
		switch {
		case search.IsTimeoutError(f.Err):
			kind = "timed out"
		case search.IsParseError(f.Err):
			kind = "bad response"
		case search.IsNetworkError(f.Err):
			kind = "unreachable"
		}
		logger.Warn().Err(f.Err).Str("engine", f.Engine).Msgf("Engine %s", kind)
	}
}

// getFilter returns the filter from --filter or --preset, or nil for none
func getFilter() (*filter.Filter, error) {
	if filterExpr != "" && preset != "" {
		return nil, fmt.Errorf("cannot use both --filter and --preset")
	}

	if filterExpr != "" {
		f, err := filter.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset == "" {
		return nil, nil
	}

	m := filter.NewManager()
	if err := m.RegisterFilters(cfg.Filters); err != nil {
		return nil, err
	}

	f, ok := m.GetFilter(preset)
	if !ok {
		return nil, fmt.Errorf("preset %q not found (available: %s)", preset, strings.Join(m.ListFilters(), ", "))
	}
	return f, nil
}

// engineNames maps user input to registered engine names, ignoring case.
// Unknown names are passed through so Subset can report them.
func engineNames(registered, requested []string) []string {
	out := make([]string, 0, len(requested))
	for _, r := range requested {
		name := r
		for _, n := range registered {
			if strings.EqualFold(n, r) {
				name = n
				break
			}
		}
		out = append(out, name)
	}
	return out
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
