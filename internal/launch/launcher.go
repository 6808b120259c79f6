// Package launch ties a launch together: free the configured port,
// prepare the runtime environment, then run the service in the
// foreground until it exits.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/nvdan/portclaim/internal/config"
	"github.com/nvdan/portclaim/internal/pyenv"
	"github.com/nvdan/portclaim/internal/reclaim"
)

// Launcher runs one service launch cycle.
type Launcher struct {
	Cfg       config.Config
	Log       *slog.Logger
	Reclaimer *reclaim.Reclaimer
	Env       *pyenv.Env // nil disables environment bootstrap
	Stdout    io.Writer
}

// New builds a Launcher from a configuration.
func New(cfg config.Config, force bool) *Launcher {
	l := &Launcher{
		Cfg:       cfg,
		Log:       slog.Default(),
		Reclaimer: reclaim.New(cfg.Grace(), force),
		Stdout:    os.Stdout,
	}
	if cfg.EnvDir != "" {
		l.Env = pyenv.New(cfg.EnvDir, cfg.Python, cfg.Requirements)
	}
	return l
}

// Run blocks until the service exits and returns its exit code. A
// context cancellation (SIGINT/SIGTERM on the launcher) is forwarded to
// the child as SIGTERM.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	res := l.Reclaimer.Reclaim(l.Cfg.Port)
	switch {
	case len(res.KilledPIDs) > 0:
		l.Log.Info("freed port", "port", res.Port, "pids", res.KilledPIDs)
	case res.Succeeded:
		l.Log.Debug("port already free", "port", res.Port)
	}
	if res.Err != nil {
		// Best effort: if the port is genuinely still taken, the
		// service's own bind attempt will say so.
		l.Log.Warn("port reclaim incomplete, continuing", "port", res.Port, "err", res.Err)
	}
	if len(res.StillBound) > 0 {
		l.Log.Warn("port still bound after grace period", "port", res.Port, "pids", res.StillBound)
	}

	if l.Env != nil {
		if err := l.Env.Ensure(ctx); err != nil {
			return 1, err
		}
	}

	name, args := l.command()
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		"PORT="+strconv.Itoa(l.Cfg.Port),
		"HOST="+l.Cfg.Host,
	)

	l.banner()
	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case <-ctx.Done():
		l.Log.Info("shutting down service", "pid", cmd.Process.Pid)
		_ = cmd.Process.Signal(syscall.SIGTERM)
		err = <-done
	case err = <-done:
	}

	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

// command resolves the configured argv against the managed environment:
// a bare program name (no path separator) prefers the environment's copy
// when one exists, so "python" means the venv's interpreter.
func (l *Launcher) command() (string, []string) {
	name := l.Cfg.Command[0]
	if l.Env != nil && !strings.ContainsRune(name, os.PathSeparator) {
		if bin := l.Env.Bin(name); fileExists(bin) {
			name = bin
		}
	}
	return name, l.Cfg.Command[1:]
}

func (l *Launcher) banner() {
	host := l.Cfg.Host
	if host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	fmt.Fprintf(l.Stdout, "serving on http://%s:%d\n", host, l.Cfg.Port)
	fmt.Fprintf(l.Stdout, "API docs at http://%s:%d/docs\n", host, l.Cfg.Port)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
