package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
)

var (
	usagesKind    string
	usagesFile    string
	usagesNoDef   bool
	usagesMaxHits int
)

var usagesCmd = &cobra.Command{
	Use:   "usages <symbol>",
	Short: "Find usages of a symbol (heuristic text scan)",
	Long:  "Scans project files for word-boundary occurrences of the symbol name. Results are approximate: matching is textual, not semantic.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsages,
}

func init() {
	usagesCmd.Flags().StringVar(&usagesKind, "kind", "", "filter the target symbol by kind")
	usagesCmd.Flags().StringVar(&usagesFile, "file", "", "filter the target symbol by source file substring")
	usagesCmd.Flags().BoolVar(&usagesNoDef, "no-definition", false, "skip the definition location")
	usagesCmd.Flags().IntVar(&usagesMaxHits, "max", 50, "max stored usages")
}

func runUsages(cmd *cobra.Command, args []string) error {
	params := socket.UsagesParams{
		Symbol:         args[0],
		Kind:           usagesKind,
		File:           usagesFile,
		SkipDefinition: usagesNoDef,
		MaxResults:     &usagesMaxHits,
	}

	var result socket.UsagesResult
	if client := daemonClient(); client != nil {
		r, err := client.Usages(params)
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
		result = a.Usages(params)
	}

	if !result.Found {
		fmt.Printf("symbol %q not found\n", args[0])
		return nil
	}

	for _, u := range result.Usages {
		marker := " "
		if u.IsDefinition {
			marker = "D"
		}
		fmt.Printf("%s %s:%d: %s\n", marker, u.File, u.Line, u.Text)
	}
	fmt.Printf("%d occurrence(s)", result.TotalFound)
	if result.LimitReached {
		fmt.Printf(" (showing first %d)", len(result.Usages))
	}
	fmt.Println()
	return nil
}
