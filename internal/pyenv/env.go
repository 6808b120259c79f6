// Package pyenv provisions the isolated Python environment a launched
// service runs from.
package pyenv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// RunFunc abstracts command execution so tests can observe invocations
// instead of spawning interpreters.
type RunFunc func(cmd *exec.Cmd) error

// Env describes one virtual environment.
type Env struct {
	Dir          string
	Python       string // interpreter used to create the environment
	Requirements []string
	Log          *slog.Logger
	Run          RunFunc
}

// New returns an Env with OS-backed execution.
func New(dir, python string, requirements []string) *Env {
	if python == "" {
		python = "python3"
	}
	return &Env{
		Dir:          dir,
		Python:       python,
		Requirements: requirements,
		Log:          slog.Default(),
		Run:          runInherited,
	}
}

func runInherited(cmd *exec.Cmd) error {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Exists reports whether the environment has already been created.
func (e *Env) Exists() bool {
	_, err := os.Stat(e.Bin("python"))
	return err == nil
}

// Bin returns the path of a tool inside the environment.
func (e *Env) Bin(name string) string {
	return filepath.Join(e.Dir, "bin", name)
}

// Ensure provisions the environment: it creates the venv when missing
// and installs the configured requirements into it. Concurrent launchers
// are serialized with a file lock next to the environment directory, so
// only one of them pays the bootstrap cost and none see a half-created
// venv.
func (e *Env) Ensure(ctx context.Context) error {
	fl, err := acquireLock(ctx, e.Dir+".lock")
	if err != nil {
		return err
	}
	defer releaseLock(e.Log, fl)

	if e.Exists() {
		e.Log.Debug("virtual environment present", "dir", e.Dir)
		return nil
	}

	e.Log.Info("creating virtual environment", "dir", e.Dir)
	if err := e.Run(exec.CommandContext(ctx, e.Python, "-m", "venv", e.Dir)); err != nil {
		return fmt.Errorf("creating venv %s: %w", e.Dir, err)
	}

	if len(e.Requirements) == 0 {
		return nil
	}
	e.Log.Info("installing requirements", "count", len(e.Requirements))
	args := append([]string{"install"}, e.Requirements...)
	if err := e.Run(exec.CommandContext(ctx, e.Bin("pip"), args...)); err != nil {
		return fmt.Errorf("installing requirements: %w", err)
	}
	return nil
}
