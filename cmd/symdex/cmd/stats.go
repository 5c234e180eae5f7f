package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	var result socket.StatsResult
	if client := daemonClient(); client != nil {
		r, err := client.Stats()
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
		result = a.Stats()
	}

	fmt.Printf("symbols: %d\n", result.SymbolCount)
	fmt.Printf("files:   %d\n", result.FileCount)

	kinds := make([]string, 0, len(result.Kinds))
	for k := range result.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-10s %d\n", k, result.Kinds[k])
	}

	if result.LastFullRefresh > 0 {
		fmt.Printf("last full refresh: %s\n", time.Unix(result.LastFullRefresh, 0).Format(time.RFC3339))
	}
	return nil
}
