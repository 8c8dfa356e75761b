package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/arrdeck/magnet"
)

var buildMagnet bool

// magnetCmd represents the magnet command
var magnetCmd = &cobra.Command{
	Use:   "magnet <magnet|url|hash|file.torrent>...",
	Short: "Extract info hashes from magnet links, URLs or .torrent files",
	Long: `Print the info hash found in each argument.

Arguments ending in .torrent are read from disk and hashed. Anything else is
scanned for the first 40 character hexadecimal run.`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: initializeLogger,
	RunE:              runMagnet,
}

func init() {
	rootCmd.AddCommand(magnetCmd)

	magnetCmd.Flags().BoolVarP(&buildMagnet, "uri", "u", false, "print a magnet URI instead of the bare hash")
}

func runMagnet(cmd *cobra.Command, args []string) error {
	var failed int
	for _, arg := range args {
		hash, name, err := infoHashOf(arg)
		if err != nil {
			logger.Error().Err(err).Str("input", arg).Msg("Failed to read torrent")
			failed++
			continue
		}
		if hash == "" {
			fmt.Fprintf(os.Stderr, "✗ %s: no info hash found\n", arg)
			failed++
			continue
		}

		if !buildMagnet {
			fmt.Println(hash)
			continue
		}

		uri, err := magnet.Build(hash, name)
		if err != nil {
			return err
		}
		fmt.Println(uri)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs had no info hash", failed, len(args))
	}
	return nil
}

func infoHashOf(arg string) (magnet.InfoHash, string, error) {
	if !strings.HasSuffix(strings.ToLower(arg), ".torrent") {
		return magnet.ExtractInfoHash(arg), "", nil
	}

	f, err := os.Open(arg)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	return magnet.InfoHashFromTorrent(f)
}
