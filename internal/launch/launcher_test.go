package launch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvdan/portclaim/internal/config"
	"github.com/nvdan/portclaim/internal/netstat"
	"github.com/nvdan/portclaim/internal/pyenv"
	"github.com/nvdan/portclaim/internal/reclaim"
)

// freePortReclaimer never finds anything bound, so Run goes straight to
// spawning the service.
func freePortReclaimer() *reclaim.Reclaimer {
	return &reclaim.Reclaimer{
		Lookup:    func(port int) ([]netstat.Binding, error) { return nil, nil },
		Terminate: func(pid, port int) error { return nil },
	}
}

func testLauncher(cfg config.Config) (*Launcher, *bytes.Buffer) {
	var out bytes.Buffer
	l := &Launcher{
		Cfg:       cfg,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Reclaimer: freePortReclaimer(),
		Stdout:    &out,
	}
	return l, &out
}

func TestRunReturnsChildExitCode(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"sh", "-c", "exit 3"}
	cfg.EnvDir = ""
	l, _ := testLauncher(cfg)

	code, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunSuccess(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"true"}
	cfg.EnvDir = ""
	l, out := testLauncher(cfg)

	code, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "http://127.0.0.1:8000")
}

func TestRunForwardsCancellation(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"sleep", "30"}
	cfg.EnvDir = ""
	l, _ := testLauncher(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := l.Run(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second, "child must be terminated, not waited out")
}

func TestRunMissingCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"definitely-not-a-real-program"}
	cfg.EnvDir = ""
	l, _ := testLauncher(cfg)

	code, err := l.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestCommandPrefersEnvBinary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".venv")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "python"), nil, 0o755))

	cfg := config.Default()
	cfg.Command = []string{"python", "app.py"}
	l, _ := testLauncher(cfg)
	l.Env = pyenv.New(dir, "", nil)

	name, args := l.command()
	assert.Equal(t, filepath.Join(dir, "bin", "python"), name)
	assert.Equal(t, []string{"app.py"}, args)
}

func TestCommandLeavesPathsAlone(t *testing.T) {
	cfg := config.Default()
	cfg.Command = []string{"/usr/bin/python3", "app.py"}
	l, _ := testLauncher(cfg)
	l.Env = pyenv.New(t.TempDir(), "", nil)

	name, _ := l.command()
	assert.Equal(t, "/usr/bin/python3", name)
}
