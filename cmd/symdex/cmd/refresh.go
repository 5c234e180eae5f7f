package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
	"github.com/corey/symdex/internal/domain/registry"
)

var (
	refreshFull     bool
	refreshBaseDir  string
	refreshPatterns []string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-index stale files (or the whole tree with --full)",
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshFull, "full", false, "discover and index all matching files")
	refreshCmd.Flags().StringVar(&refreshBaseDir, "dir", "", "full scan base directory (default: project root)")
	refreshCmd.Flags().StringSliceVar(&refreshPatterns, "pattern", nil, "glob patterns for full scan (default: supported source files)")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	params := socket.RefreshParams{
		FullScan: refreshFull,
		BaseDir:  refreshBaseDir,
		Patterns: refreshPatterns,
	}

	var result registry.RefreshResult
	if client := daemonClient(); client != nil {
		r, err := client.Refresh(params)
		if err != nil {
			return err
		}
		result = *r
	} else {
		a, err := localApp()
		if err != nil {
			return err
		}
		defer a.Stop()
		result = a.Refresh(params)
	}

	if !result.Refreshed {
		return fmt.Errorf("refresh failed: %s", result.Error)
	}
	fmt.Printf("processed %d file(s), removed %d, %d symbol(s) indexed\n",
		result.FilesProcessed, result.FilesRemoved, result.TotalSymbols)
	return nil
}
