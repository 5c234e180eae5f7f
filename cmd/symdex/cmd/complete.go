package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
)

var completeCmd = &cobra.Command{
	Use:   "complete <prefix>",
	Short: "Autocomplete symbol names",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	params := socket.CompleteParams{Prefix: args[0]}

	var result socket.SearchResult
	if client := daemonClient(); client != nil {
		r, err := client.Complete(params)
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
		result = a.Complete(params)
	}

	for _, sym := range result.Symbols {
		fmt.Printf("%s\t%s\n", sym.Name, sym.Kind)
	}
	return nil
}
