package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
)

var (
	searchKind    string
	searchFile    string
	searchExact   bool
	searchPrivate bool
	searchFuzzy   bool
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed symbols",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "filter by symbol kind (function, class, ...)")
	searchCmd.Flags().StringVar(&searchFile, "file", "", "filter by source file substring")
	searchCmd.Flags().BoolVar(&searchExact, "exact", false, "exact name match only")
	searchCmd.Flags().BoolVar(&searchPrivate, "private", false, "include private symbols")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "widen matching with edit-distance similarity")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "max results (0 = unlimited)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	params := socket.SearchParams{
		Query:          args[0],
		Kind:           searchKind,
		File:           searchFile,
		Exact:          searchExact,
		IncludePrivate: searchPrivate,
		Fuzzy:          searchFuzzy,
		Limit:          &searchLimit,
	}

	var result socket.SearchResult
	if client := daemonClient(); client != nil {
		r, err := client.Search(params)
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
		result = a.Search(params)
	}

	printSymbols(result.Symbols)
	fmt.Printf("%d result(s)\n", result.Count)
	return nil
}

// printSymbols renders symbols one per line: kind, name+signature, file:line.
func printSymbols(symbols []socket.SymbolInfo) {
	for _, sym := range symbols {
		loc := sym.File
		if sym.Line > 0 {
			loc = fmt.Sprintf("%s:%d", sym.File, sym.Line)
		}
		name := sym.Name
		if sym.Parent != "" {
			name = sym.Parent + "." + name
		}
		fmt.Printf("%-10s %s%s  %s\n", sym.Kind, name, sym.Signature, loc)
	}
}
