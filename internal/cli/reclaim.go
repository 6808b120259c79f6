package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nvdan/portclaim/internal/netstat"
	"github.com/nvdan/portclaim/internal/owner"
	"github.com/nvdan/portclaim/internal/reclaim"
	"github.com/nvdan/portclaim/internal/ui"
)

func newReclaimCommand() *cobra.Command {
	var (
		force  bool
		yes    bool
		dryRun bool
		grace  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "reclaim [port]",
		Short: "Terminate whatever is bound to a port",
		Long: `Reclaim enumerates the processes bound to a port, terminates each one
through its owning manager (signal, container runtime, or systemd), and
waits a short grace period for the OS to release the socket.

Without --yes, an interactive confirm is shown when attached to a
terminal. The operation is best effort: a port that stays bound is
reported, not treated as a failure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			port, err := resolvePort(cfg, args)
			if err != nil {
				return err
			}

			g := cfg.Grace()
			if cmd.Flags().Changed("grace") {
				g = grace
			}
			r := reclaim.New(g, force)

			if dryRun {
				return runDryRun(port, force)
			}

			if !yes && !jsonOut && isatty.IsTerminal(os.Stdout.Fd()) {
				_, err := tea.NewProgram(ui.New(port, r), tea.WithAltScreen()).Run()
				return err
			}

			res := r.Reclaim(port)
			printReclaimResult(res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "SIGKILL instead of SIGTERM")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive confirm")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be killed without doing it")
	cmd.Flags().DurationVar(&grace, "grace", 0, "socket release wait after signaling (default from config)")

	return cmd
}

func runDryRun(port int, force bool) error {
	bindings, err := netstat.Lookup(netstat.Query{Port: port})
	if err != nil {
		return fmt.Errorf("detecting processes on port %d: %w", port, err)
	}
	if len(bindings) == 0 {
		fmt.Printf("no processes found on port %d\n", port)
		return nil
	}

	seen := make(map[int]bool)
	for _, b := range bindings {
		if seen[b.PID] {
			continue
		}
		seen[b.PID] = true

		oc, err := owner.Detect(b.PID, b.Port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not get info for PID %d: %v\n", b.PID, err)
			continue
		}

		action := reclaim.Plan(oc, force)
		fmt.Printf("[dry-run] %s%s\n", action.Describe(), formatOwner(oc, b))
		if len(oc.Proc.Children) > 0 {
			fmt.Printf("  child PIDs: %v\n", oc.Proc.Children)
		}
	}
	return nil
}

func formatOwner(oc owner.Context, b netstat.Binding) string {
	parts := []string{
		fmt.Sprintf(" (PID %d, port %d/%s", oc.Proc.PID, b.Port, b.Protocol),
	}
	if oc.Proc.Command != "" {
		cmd := oc.Proc.Command
		if len(cmd) > 40 {
			cmd = cmd[:37] + "..."
		}
		parts = append(parts, fmt.Sprintf(", %s", cmd))
	}
	if oc.Containerized() {
		parts = append(parts, fmt.Sprintf(", %s", oc.Container))
	}
	if oc.SystemdManaged() {
		parts = append(parts, fmt.Sprintf(", systemd %s", oc.SystemdUnit))
	}
	return strings.Join(parts, "") + ")"
}

func printReclaimResult(res reclaim.Result) {
	if jsonOut {
		printJSON(struct {
			reclaim.Result
			Error string `json:"error,omitempty"`
		}{Result: res, Error: errString(res.Err)})
		return
	}

	switch {
	case len(res.KilledPIDs) > 0:
		fmt.Printf("freed port %d (killed %v)\n", res.Port, res.KilledPIDs)
	case res.Succeeded:
		fmt.Printf("port %d already free\n", res.Port)
	}
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", res.Err)
	}
	if len(res.StillBound) > 0 {
		fmt.Fprintf(os.Stderr, "warning: port %d still bound by %v after grace period\n", res.Port, res.StillBound)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
