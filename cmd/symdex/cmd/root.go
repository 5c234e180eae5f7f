package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
	"github.com/corey/symdex/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "symdex",
	Short: "symdex is a persistent source-symbol index",
	Long:  "Symbol search, autocomplete, doc lookup, and usage scanning for TypeScript, JavaScript, and Python codebases.",
}

var backendFlag string

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// daemonClient returns a connected client when a daemon is serving this
// project, nil otherwise.
func daemonClient() *socket.Client {
	client := socket.NewClient(socket.SocketPath(projectRoot()))
	if client.Ping() {
		return client
	}
	return nil
}

// localApp builds and initializes an in-process app for one-shot commands
// run without a daemon.
func localApp() (*app.App, error) {
	a, err := app.New(app.Config{ProjectRoot: projectRoot(), Backend: backendFlag})
	if err != nil {
		return nil, err
	}
	a.Initialize()
	return a, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", app.BackendJSON, "state store backend (json or bolt)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(usagesCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(wipeCmd)
}
