package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvdan/portclaim/internal/config"
	"github.com/nvdan/portclaim/internal/netstat"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "reclaim")
	assert.Contains(t, names, "launch")
	assert.Contains(t, names, "status")
}

func TestResolvePort(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "no args uses config", args: nil, want: cfg.Port},
		{name: "bare port", args: []string{"9090"}, want: 9090},
		{name: "colon port", args: []string{":3000"}, want: 3000},
		{name: "host and port", args: []string{"localhost:8080"}, want: 8080},
		{name: "garbage", args: []string{"not-a-port"}, wantErr: true},
		{name: "out of range", args: []string{"70000"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePort(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusRowsSurviveDeadPIDs(t *testing.T) {
	// PID 0 and an absurdly high PID cannot be gathered; the rows must
	// still come back with the socket data intact.
	bindings := []netstat.Binding{
		{PID: 4194304, Port: 8000, Protocol: "tcp", Listening: true},
	}

	rows := statusRows(bindings)
	require.Len(t, rows, 1)
	assert.Equal(t, 4194304, rows[0].PID)
	assert.Equal(t, 8000, rows[0].Port)
	assert.True(t, rows[0].Listening)
	assert.Empty(t, rows[0].Command)
}
