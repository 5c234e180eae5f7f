package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/symdex/internal/adapters/socket"
	"github.com/corey/symdex/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Manage the symdex daemon",
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE:  runServeStart,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runServeStop,
}

func init() {
	serveCmd.AddCommand(serveStartCmd)
	serveCmd.AddCommand(serveStopCmd)
}

func runServeStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	if client := daemonClient(); client != nil {
		fmt.Println("daemon already running")
		return nil
	}

	paths := app.NewPaths(root)
	if err := os.MkdirAll(paths.LogDir, 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(paths.DaemonLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()

	a, err := app.New(app.Config{ProjectRoot: root, Backend: backendFlag, LogWriter: logFile})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		return err
	}
	fmt.Printf("symdex daemon started at %s\n", a.SocketAddr())

	// Wait for a signal or a remote shutdown request
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.ShutdownCh():
	}

	fmt.Println("shutting down...")
	return a.Stop()
}

func runServeStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))

	if !client.Ping() {
		fmt.Println("daemon is not running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Println("daemon stopped")
	return nil
}
