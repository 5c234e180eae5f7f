package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
)

var docCmd = &cobra.Command{
	Use:   "doc <name>",
	Short: "Show documentation and related symbols for one symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runDoc,
}

func runDoc(cmd *cobra.Command, args []string) error {
	params := socket.DocParams{Name: args[0]}

	var result socket.DocResult
	if client := daemonClient(); client != nil {
		r, err := client.Doc(params)
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
		result = a.Doc(params)
	}

	if !result.Found {
		fmt.Printf("symbol %q not found\n", args[0])
		return nil
	}

	sym := result.Symbol
	fmt.Printf("%s %s%s\n", sym.Kind, sym.Name, sym.Signature)
	if sym.Line > 0 {
		fmt.Printf("  defined: %s:%d\n", sym.File, sym.Line)
	} else {
		fmt.Printf("  defined: %s\n", sym.File)
	}
	if sym.Description != "" {
		fmt.Printf("  %s\n", sym.Description)
	}
	if result.Parent != nil {
		fmt.Printf("  parent: %s %s\n", result.Parent.Kind, result.Parent.Name)
	}
	if len(result.Children) > 0 {
		fmt.Println("  members:")
		for _, child := range result.Children {
			fmt.Printf("    %s %s%s\n", child.Kind, child.Name, child.Signature)
		}
	}
	return nil
}
