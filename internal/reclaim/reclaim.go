// Package reclaim frees a TCP port by terminating whatever currently
// holds it bound, so the caller can bind it next.
//
// Reclamation is best effort by design: termination is asynchronous from
// the OS's point of view, a race with a newly spawned process is always
// possible, and a port that stays bound only means the caller's own bind
// attempt will surface the real error. Nothing here is fatal.
package reclaim

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nvdan/portclaim/internal/netstat"
	"github.com/nvdan/portclaim/internal/procinfo"
)

// DefaultGrace is the wait inserted after signaling, to give the OS time
// to release the socket before the caller tries to bind it.
const DefaultGrace = 2 * time.Second

// Result reports the outcome of one reclaim pass. It is created per
// invocation and discarded after the caller proceeds.
type Result struct {
	Port       int   `json:"port"`
	KilledPIDs []int `json:"killed_pids"`
	Succeeded  bool  `json:"succeeded"`
	Err        error `json:"-"`

	// StillBound lists PIDs that still held the port after the grace
	// period. Advisory only: a delayed release is not a failure.
	StillBound []int `json:"still_bound,omitempty"`
}

// LookupFunc returns the sockets currently bound to a port.
type LookupFunc func(port int) ([]netstat.Binding, error)

// TerminateFunc requests termination of one process found on a port.
type TerminateFunc func(pid, port int) error

// Reclaimer frees ports. The zero value is not usable; construct with
// New, or fill in the collaborators explicitly (tests do).
type Reclaimer struct {
	Grace     time.Duration
	Force     bool // SIGKILL instead of SIGTERM for bare processes
	Log       *slog.Logger
	Lookup    LookupFunc
	Terminate TerminateFunc

	sleep func(time.Duration)
}

// New returns a Reclaimer backed by the live OS socket table and
// ownership-aware termination. A non-positive grace falls back to
// DefaultGrace.
func New(grace time.Duration, force bool) *Reclaimer {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Reclaimer{
		Grace: grace,
		Force: force,
		Log:   slog.Default(),
		Lookup: func(port int) ([]netstat.Binding, error) {
			return netstat.Lookup(netstat.Query{Port: port})
		},
		Terminate: OwnerAware(force),
	}
}

// Reclaim frees the given port: it enumerates the bound sockets, requests
// termination of each distinct owning process, then waits one grace
// period for the OS to release the socket.
//
// A free port is an immediate no-op success. A process that exited
// between enumeration and signaling still counts as killed. Permission
// failures are logged and recorded on the Result but do not stop the
// pass or mark it failed; partial reclamation is still a success.
func (r *Reclaimer) Reclaim(port int) Result {
	res := Result{Port: port, KilledPIDs: []int{}}

	if port < 1 || port > 65535 {
		res.Err = fmt.Errorf("port %d out of range (1-65535)", port)
		return res
	}

	bindings, err := r.Lookup(port)
	if err != nil {
		// Without an enumeration there is nothing to kill. The caller's
		// bind attempt will surface the conflict if there is one.
		r.log().Warn("cannot enumerate sockets", "port", port, "err", err)
		res.Err = err
		return res
	}

	if len(bindings) == 0 {
		res.Succeeded = true
		return res
	}

	var errs []error
	for _, pid := range distinctPIDs(bindings) {
		err := r.Terminate(pid, port)
		switch {
		case err == nil, errors.Is(err, procinfo.ErrAlreadyExited):
			res.KilledPIDs = append(res.KilledPIDs, pid)
		case errors.Is(err, procinfo.ErrPermissionDenied):
			r.log().Warn("no permission to terminate", "pid", pid, "port", port)
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		default:
			r.log().Warn("terminate failed", "pid", pid, "port", port, "err", err)
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
		}
	}

	// One grace wait per pass, however many processes were signaled.
	r.wait(r.Grace)

	// Advisory recheck. The design does not hard-fail on a delayed
	// release; this only informs the caller's logging.
	if rest, err := r.Lookup(port); err == nil {
		res.StillBound = distinctPIDs(rest)
	}

	res.Succeeded = true
	res.Err = errors.Join(errs...)
	return res
}

func (r *Reclaimer) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	if r.sleep != nil {
		r.sleep(d)
		return
	}
	time.Sleep(d)
}

func (r *Reclaimer) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// distinctPIDs collapses duplicate bindings (one process often holds both
// the v4 and v6 socket) into a sorted PID set.
func distinctPIDs(bindings []netstat.Binding) []int {
	seen := make(map[int]bool)
	var pids []int
	for _, b := range bindings {
		if b.PID <= 0 || seen[b.PID] {
			continue
		}
		seen[b.PID] = true
		pids = append(pids, b.PID)
	}
	sort.Ints(pids)
	return pids
}
