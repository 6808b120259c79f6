package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portclaim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 2*time.Second, cfg.Grace())
	assert.Equal(t, []string{"python", "app.py"}, cfg.Command)
	assert.Equal(t, ".venv", cfg.EnvDir)
	assert.Equal(t, []string{"fastapi", "uvicorn", "httpx"}, cfg.Requirements)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 9000
grace_period: 500ms
command: ["uvicorn", "app:app"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Grace())
	assert.Equal(t, []string{"uvicorn", "app:app"}, cfg.Command)

	// Untouched fields keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, ".venv", cfg.EnvDir)
	assert.Equal(t, []string{"fastapi", "uvicorn", "httpx"}, cfg.Requirements)
}

func TestLoadMissingDefaultPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err, "a missing default config file is not an error")
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicitly named config file must exist")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "port: [8000"},
		{"bad duration", "grace_period: soon"},
		{"port out of range", "port: 70000"},
		{"empty command", "command: []"},
		{"negative grace", "grace_period: -1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
