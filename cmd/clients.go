package cmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/arrdeck/clients"
	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/magnet"
	"github.com/s0up4200/arrdeck/presentation"
	"github.com/s0up4200/arrdeck/status"
)

const clientConcurrency = 4

var (
	clientName   string
	showTorrents bool
	deleteFiles  bool
)

// clientsCmd represents the clients command
var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage configured torrent clients",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured torrent clients",
	RunE:  runClientsList,
}

var clientsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to every configured client",
	RunE:  runClientsTest,
}

var clientsAddCmd = &cobra.Command{
	Use:   "add <magnet|hash>...",
	Short: "Send magnet links or info hashes to a client",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClientsAdd,
}

var clientsRemoveCmd = &cobra.Command{
	Use:   "remove <hash>...",
	Short: "Remove torrents from a client",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClientsRemove,
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsListCmd, clientsTestCmd, clientsAddCmd, clientsRemoveCmd)

	clientsListCmd.Flags().BoolVarP(&showTorrents, "torrents", "t", false, "also list each client's torrents")
	clientsAddCmd.Flags().StringVarP(&clientName, "client", "c", "", "client name from config (default: first client)")
	clientsRemoveCmd.Flags().StringVarP(&clientName, "client", "c", "", "client name from config (default: first client)")
	clientsRemoveCmd.Flags().BoolVar(&deleteFiles, "delete-files", false, "also delete downloaded data")
}

func clientOptions(extra ...status.Publisher) []clients.Option {
	publishers := append([]status.Publisher{status.NewLogPublisher(logger)}, extra...)
	return []clients.Option{
		clients.WithLogger(logger),
		clients.WithPublisher(status.Multi(publishers...)),
	}
}

// connectDurations pairs each client's connecting event with the event that
// ended the attempt. It reads until events is closed.
func connectDurations(events <-chan status.Event) map[string]time.Duration {
	started := make(map[string]time.Time)
	out := make(map[string]time.Duration)
	for e := range events {
		switch e.State {
		case status.StateConnecting:
			started[e.Client] = e.At
		case status.StateConnected, status.StateError:
			if at, ok := started[e.Client]; ok {
				out[e.Client] = e.At.Sub(at)
			}
		}
	}
	return out
}

// selectClient builds and connects the client chosen with --client
func selectClient(cmd *cobra.Command) (clients.Client, config.ClientConfig, error) {
	if len(cfg.Clients) == 0 {
		return nil, config.ClientConfig{}, fmt.Errorf("no clients configured")
	}

	cc := cfg.Clients[0]
	if clientName != "" {
		var ok bool
		cc, ok = cfg.Client(clientName)
		if !ok {
			return nil, cc, fmt.Errorf("client %q not found in config", clientName)
		}
	}

	c, err := clients.New(cc, clientOptions()...)
	if err != nil {
		return nil, cc, err
	}

	if err := c.Connect(cmd.Context()); err != nil {
		return nil, cc, fmt.Errorf("failed to connect to %s: %w", cc.Name, err)
	}
	return c, cc, nil
}

func runClientsList(cmd *cobra.Command, args []string) error {
	if len(cfg.Clients) == 0 {
		fmt.Println("No clients configured.")
		return nil
	}

	all, err := clients.NewAll(cfg.Clients, clientOptions()...)
	if err != nil {
		return err
	}

	fmt.Println(strings.Repeat("━", 80))
	fmt.Printf("%-20s %-20s %-22s %s\n", "NAME", "TYPE", "SLUG", "URL")
	fmt.Println(strings.Repeat("━", 80))

	for i, c := range all {
		p := presentation.Wrap(c)
		fmt.Printf("%-20s %-20s %-22s %s\n", cfg.Clients[i].Name, p.Name(), p.Slug(), cfg.Clients[i].URL)

		if !showTorrents {
			continue
		}

		if err := c.Connect(cmd.Context()); err != nil {
			fmt.Printf("  ✗ %v\n", err)
			continue
		}
		torrents, err := c.List(cmd.Context())
		if err != nil {
			fmt.Printf("  ✗ %v\n", err)
			continue
		}
		for _, t := range torrents {
			fmt.Printf("  %s %5.1f%% %10s  %s\n", t.Hash, t.Progress*100, humanize.IBytes(uint64(max(t.Size, 0))), t.Name)
		}
	}

	return nil
}

func runClientsTest(cmd *cobra.Command, args []string) error {
	if len(cfg.Clients) == 0 {
		return fmt.Errorf("no clients configured")
	}

	hub := status.NewHub(4 * len(cfg.Clients))
	events, unsubscribe := hub.Subscribe()

	all, err := clients.NewAll(cfg.Clients, clientOptions(hub)...)
	if err != nil {
		unsubscribe()
		return err
	}

	var (
		mu      sync.Mutex
		results = make([]error, len(all))
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(clientConcurrency)

	for i, c := range all {
		g.Go(func() error {
			err := c.Connect(ctx)
			mu.Lock()
			results[i] = err
			mu.Unlock()
			// Log error but don't fail the whole operation
			return nil
		})
	}
	_ = g.Wait()

	unsubscribe()
	took := connectDurations(events)

	failed := 0
	for i, c := range all {
		p := presentation.Wrap(c)
		elapsed := took[cfg.Clients[i].Name].Round(time.Millisecond)
		if results[i] != nil {
			failed++
			fmt.Printf("✗ %s (%s) %s: %v\n", cfg.Clients[i].Name, p.Name(), elapsed, results[i])
			continue
		}
		fmt.Printf("✓ %s (%s) %s\n", cfg.Clients[i].Name, p.Name(), elapsed)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d clients failed", failed, len(all))
	}
	return nil
}

func runClientsAdd(cmd *cobra.Command, args []string) error {
	c, cc, err := selectClient(cmd)
	if err != nil {
		return err
	}

	var failed int
	for _, arg := range args {
		hash, err := c.AddMagnet(cmd.Context(), arg)
		if err != nil {
			logger.Error().Err(err).Str("client", cc.Name).Msg("Failed to add magnet")
			fmt.Printf("✗ %s: %v\n", arg, err)
			failed++
			continue
		}
		fmt.Printf("✓ Added %s to %s\n", hash, cc.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d magnets failed", failed, len(args))
	}
	return nil
}

func runClientsRemove(cmd *cobra.Command, args []string) error {
	c, cc, err := selectClient(cmd)
	if err != nil {
		return err
	}

	var failed int
	for _, arg := range args {
		hash := magnet.ExtractInfoHash(arg)
		if hash == "" {
			fmt.Printf("✗ %s: no info hash found\n", arg)
			failed++
			continue
		}
		if err := c.Remove(cmd.Context(), hash, deleteFiles); err != nil {
			fmt.Printf("✗ %s: %v\n", hash, err)
			failed++
			continue
		}
		fmt.Printf("✓ Removed %s from %s\n", hash, cc.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d removals failed", failed, len(args))
	}
	return nil
}
