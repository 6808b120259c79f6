// Package cli implements the cobra commands for portclaim: reclaim,
// launch, and status.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvdan/portclaim/internal/config"
	"github.com/nvdan/portclaim/internal/netstat"
)

// Version is injected from main via -ldflags.
var Version = "dev"

// Global flags, bound as persistent flags on the root command.
var (
	cfgPath string
	jsonOut bool
	verbose bool
)

// NewRootCommand creates the root command and registers the subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "portclaim",
		Short: "Free a TCP port and relaunch the service that should own it",
		Long: `portclaim frees a TCP port by terminating whatever currently holds it
bound, then optionally bootstraps the service environment and starts the
service in the foreground.

Reclaiming a port kills foreign processes. Only point it at ports you
own and expect to manage.`,

		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable output")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newReclaimCommand())
	root.AddCommand(newLaunchCommand())
	root.AddCommand(newStatusCommand())

	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgPath)
}

// resolvePort returns the port from the optional positional argument,
// falling back to the configured port.
func resolvePort(cfg config.Config, args []string) (int, error) {
	if len(args) == 0 {
		return cfg.Port, nil
	}
	q, err := netstat.ParseQuery(args[0])
	if err != nil {
		return 0, err
	}
	return q.Port, nil
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
