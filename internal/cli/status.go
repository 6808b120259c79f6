package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvdan/portclaim/internal/netstat"
	"github.com/nvdan/portclaim/internal/procinfo"
)

func newStatusCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status [port]",
		Short: "Show what is bound to a port",
		Long: `Status lists the processes holding the configured port, or every
listening socket with --all. Nothing is signaled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var bindings []netstat.Binding
			if all {
				bindings, err = netstat.LookupAll()
			} else {
				var port int
				port, err = resolvePort(cfg, args)
				if err != nil {
					return err
				}
				bindings, err = netstat.Lookup(netstat.Query{Port: port})
			}
			if err != nil {
				return err
			}

			if jsonOut {
				printJSON(statusRows(bindings))
				return nil
			}
			if len(bindings) == 0 {
				fmt.Println("nothing bound")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PID\tPORT\tPROTO\tSTATE\tCOMMAND")
			for _, row := range statusRows(bindings) {
				state := "established"
				if row.Listening {
					state = "listen"
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", row.PID, row.Port, row.Protocol, state, row.Command)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "every listening socket, not just the configured port")

	return cmd
}

type statusRow struct {
	PID       int    `json:"pid"`
	Port      int    `json:"port"`
	Protocol  string `json:"protocol"`
	Listening bool   `json:"listening"`
	Command   string `json:"command,omitempty"`
	User      string `json:"user,omitempty"`
}

func statusRows(bindings []netstat.Binding) []statusRow {
	rows := make([]statusRow, 0, len(bindings))
	for _, b := range bindings {
		row := statusRow{
			PID:       b.PID,
			Port:      b.Port,
			Protocol:  b.Protocol,
			Listening: b.Listening,
		}
		// A PID can vanish between the socket scan and here.
		if info, err := procinfo.Gather(b.PID); err == nil {
			row.Command = info.Command
			row.User = info.User
		}
		rows = append(rows, row)
	}
	return rows
}
