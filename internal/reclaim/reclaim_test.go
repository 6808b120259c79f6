package reclaim

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvdan/portclaim/internal/netstat"
	"github.com/nvdan/portclaim/internal/procinfo"
)

// fakeTable simulates the OS socket table and records termination calls.
type fakeTable struct {
	bindings   []netstat.Binding
	lookupErr  error
	terminated []int
	termErrs   map[int]error
	sleeps     []time.Duration
}

func (f *fakeTable) reclaimer(grace time.Duration) *Reclaimer {
	return &Reclaimer{
		Grace: grace,
		Lookup: func(port int) ([]netstat.Binding, error) {
			if f.lookupErr != nil {
				return nil, f.lookupErr
			}
			var out []netstat.Binding
			for _, b := range f.bindings {
				if b.Port == port {
					out = append(out, b)
				}
			}
			return out, nil
		},
		Terminate: func(pid, port int) error {
			f.terminated = append(f.terminated, pid)
			if err, ok := f.termErrs[pid]; ok {
				return err
			}
			// A terminated process no longer shows up on re-lookup.
			var rest []netstat.Binding
			for _, b := range f.bindings {
				if b.PID != pid {
					rest = append(rest, b)
				}
			}
			f.bindings = rest
			return nil
		},
		sleep: func(d time.Duration) { f.sleeps = append(f.sleeps, d) },
	}
}

func tcpBinding(pid, port int) netstat.Binding {
	return netstat.Binding{PID: pid, Port: port, Protocol: "tcp", Interface: "0.0.0.0", Listening: true}
}

func TestReclaimFreePort(t *testing.T) {
	f := &fakeTable{}
	res := f.reclaimer(time.Second).Reclaim(9999)

	assert.True(t, res.Succeeded)
	assert.Empty(t, res.KilledPIDs)
	assert.NoError(t, res.Err)
	assert.Empty(t, f.terminated, "no termination call for a free port")
	assert.Empty(t, f.sleeps, "fast path must not wait")
}

func TestReclaimFreePortIdempotent(t *testing.T) {
	f := &fakeTable{}
	r := f.reclaimer(time.Second)

	first := r.Reclaim(9999)
	second := r.Reclaim(9999)

	assert.Equal(t, first, second)
	assert.True(t, second.Succeeded)
	assert.Empty(t, second.KilledPIDs)
}

func TestReclaimSingleProcess(t *testing.T) {
	f := &fakeTable{bindings: []netstat.Binding{tcpBinding(4242, 8000)}}
	res := f.reclaimer(time.Second).Reclaim(8000)

	assert.True(t, res.Succeeded)
	assert.Equal(t, []int{4242}, res.KilledPIDs)
	assert.Equal(t, []int{4242}, f.terminated, "exactly one termination request")
	assert.Empty(t, res.StillBound)
}

func TestReclaimDistinctProcesses(t *testing.T) {
	// Three processes, one of them holding both the v4 and v6 socket:
	// the duplicate must collapse.
	f := &fakeTable{bindings: []netstat.Binding{
		tcpBinding(300, 8000),
		tcpBinding(100, 8000),
		{PID: 100, Port: 8000, Protocol: "tcp6", Interface: "::", Listening: true},
		tcpBinding(200, 8000),
	}}
	res := f.reclaimer(time.Second).Reclaim(8000)

	assert.True(t, res.Succeeded)
	assert.Equal(t, []int{100, 200, 300}, res.KilledPIDs)
	assert.Equal(t, []int{100, 200, 300}, f.terminated)
}

func TestReclaimAlreadyExited(t *testing.T) {
	f := &fakeTable{
		bindings: []netstat.Binding{tcpBinding(4242, 8000)},
		termErrs: map[int]error{4242: procinfo.ErrAlreadyExited},
	}
	res := f.reclaimer(time.Second).Reclaim(8000)

	assert.True(t, res.Succeeded)
	assert.NoError(t, res.Err, "a racing exit is not an error")
	assert.Equal(t, []int{4242}, res.KilledPIDs, "still reported as handled")
}

func TestReclaimPermissionDenied(t *testing.T) {
	f := &fakeTable{
		bindings: []netstat.Binding{tcpBinding(100, 8000), tcpBinding(200, 8000)},
		termErrs: map[int]error{100: procinfo.ErrPermissionDenied},
	}
	res := f.reclaimer(time.Second).Reclaim(8000)

	// Partial reclamation still succeeds; the failure is recorded.
	assert.True(t, res.Succeeded)
	assert.Equal(t, []int{200}, res.KilledPIDs)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, procinfo.ErrPermissionDenied)
	assert.Equal(t, []int{100, 200}, f.terminated, "remaining processes are still attempted")
	assert.Equal(t, []int{100}, res.StillBound)
}

func TestReclaimGraceWaitOnce(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		t.Run(fmt.Sprintf("%d processes", n), func(t *testing.T) {
			f := &fakeTable{}
			for pid := 1; pid <= n; pid++ {
				f.bindings = append(f.bindings, tcpBinding(1000+pid, 8000))
			}
			res := f.reclaimer(1500 * time.Millisecond).Reclaim(8000)

			assert.True(t, res.Succeeded)
			assert.Len(t, res.KilledPIDs, n)
			assert.Equal(t, []time.Duration{1500 * time.Millisecond}, f.sleeps,
				"exactly one grace wait per invocation")
		})
	}
}

func TestReclaimLookupError(t *testing.T) {
	f := &fakeTable{lookupErr: errors.New("operation not permitted")}
	res := f.reclaimer(time.Second).Reclaim(8000)

	assert.False(t, res.Succeeded)
	assert.Error(t, res.Err)
	assert.Empty(t, f.terminated)
}

func TestReclaimPortOutOfRange(t *testing.T) {
	f := &fakeTable{}
	r := f.reclaimer(time.Second)

	for _, port := range []int{0, -1, 65536} {
		res := r.Reclaim(port)
		assert.False(t, res.Succeeded, "port %d", port)
		assert.Error(t, res.Err, "port %d", port)
	}
	assert.Empty(t, f.terminated)
}

func TestNewDefaults(t *testing.T) {
	r := New(0, false)
	assert.Equal(t, DefaultGrace, r.Grace)
	assert.NotNil(t, r.Lookup)
	assert.NotNil(t, r.Terminate)

	r = New(500*time.Millisecond, true)
	assert.Equal(t, 500*time.Millisecond, r.Grace)
	assert.True(t, r.Force)
}
