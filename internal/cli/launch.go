package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nvdan/portclaim/internal/launch"
)

func newLaunchCommand() *cobra.Command {
	var (
		force bool
		noEnv bool
	)

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Free the configured port and start the service",
		Long: `Launch frees the configured port, bootstraps the service's runtime
environment if one is configured, and runs the service command in the
foreground. The launcher's exit code mirrors the service's.

SIGINT and SIGTERM are forwarded to the service as SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			l := launch.New(cfg, force)
			if noEnv {
				l.Env = nil
			}

			code, err := l.Run(cmd.Context())
			if err != nil {
				return err
			}
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "SIGKILL port holders instead of SIGTERM")
	cmd.Flags().BoolVar(&noEnv, "no-env", false, "skip environment bootstrap")

	return cmd
}
