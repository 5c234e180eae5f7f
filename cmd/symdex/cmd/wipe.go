package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Clear the symbol registry and its persisted state",
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVarP(&wipeForce, "force", "f", false, "skip confirmation")
}

func runWipe(cmd *cobra.Command, args []string) error {
	if !wipeForce {
		fmt.Print("clear the entire symbol registry? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("aborted")
			return nil
		}
	}

	if client := daemonClient(); client != nil {
		if err := client.Wipe(); err != nil {
			return err
		}
	} else {
		a, err := localApp()
		if err != nil {
			return err
		}
		defer a.Stop()
		if err := a.Wipe(); err != nil {
			return err
		}
	}

	fmt.Println("registry cleared")
	return nil
}
