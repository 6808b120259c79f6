// Package owner determines who manages a process bound to a port: a
// container runtime, a systemd unit, or nobody. Termination has to go
// through the manager when there is one, otherwise the supervisor just
// restarts the payload and the port is never freed.
package owner

import (
	"github.com/nvdan/portclaim/internal/procinfo"
)

// Context combines process info with container and systemd ownership.
type Context struct {
	Proc        procinfo.Info
	Container   *Container
	SystemdUnit string
}

// Detect gathers the full ownership context for a PID. The port is used
// on macOS, where container detection works by published port rather
// than by cgroup.
func Detect(pid, port int) (Context, error) {
	info, err := procinfo.Gather(pid)
	if err != nil {
		return Context{}, err
	}

	return Context{
		Proc:        info,
		Container:   detectContainer(pid, port),
		SystemdUnit: detectUnit(pid),
	}, nil
}

// Containerized returns true if the process runs inside a container.
func (c Context) Containerized() bool {
	return c.Container != nil
}

// SystemdManaged returns true if the process is managed by a systemd unit.
func (c Context) SystemdManaged() bool {
	return c.SystemdUnit != ""
}
