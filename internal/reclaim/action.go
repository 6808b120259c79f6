package reclaim

import (
	"fmt"
	"syscall"

	"github.com/nvdan/portclaim/internal/owner"
	"github.com/nvdan/portclaim/internal/procinfo"
)

// Strategy describes how a process is stopped.
type Strategy int

const (
	StrategySignal    Strategy = iota // SIGTERM or SIGKILL
	StrategyContainer                 // docker/podman stop or kill
	StrategySystemd                   // systemctl stop
)

func (s Strategy) String() string {
	switch s {
	case StrategySignal:
		return "signal"
	case StrategyContainer:
		return "container"
	case StrategySystemd:
		return "systemd"
	default:
		return "unknown"
	}
}

// Action is a planned termination of one process.
type Action struct {
	Strategy Strategy
	Owner    owner.Context
	Force    bool
}

// Plan picks the termination strategy for a process: containers stop
// through their runtime, systemd units through systemctl, everything
// else gets a signal. Bypassing the manager would leave a supervisor
// free to respawn the payload and rebind the port.
func Plan(oc owner.Context, force bool) Action {
	strategy := StrategySignal
	if oc.Containerized() {
		strategy = StrategyContainer
	} else if oc.SystemdManaged() {
		strategy = StrategySystemd
	}
	return Action{Strategy: strategy, Owner: oc, Force: force}
}

// Describe returns a human-readable rendering of what Execute will do.
func (a Action) Describe() string {
	switch a.Strategy {
	case StrategyContainer:
		verb := "stop"
		if a.Force {
			verb = "kill"
		}
		c := a.Owner.Container
		name := c.Name
		if name == "" {
			name = owner.ShortID(c.ID)
		}
		return fmt.Sprintf("%s %s %s", c.Runtime, verb, name)
	case StrategySystemd:
		return fmt.Sprintf("systemctl stop %s", a.Owner.SystemdUnit)
	case StrategySignal:
		sig := "SIGTERM"
		if a.Force {
			sig = "SIGKILL"
		}
		return fmt.Sprintf("kill -%s %d", sig, a.Owner.Proc.PID)
	default:
		return "unknown action"
	}
}

// Execute performs the planned termination.
func (a Action) Execute() error {
	switch a.Strategy {
	case StrategyContainer:
		if a.Force {
			return owner.KillContainer(a.Owner.Container)
		}
		return owner.StopContainer(a.Owner.Container)
	case StrategySystemd:
		return owner.StopUnit(a.Owner.SystemdUnit)
	case StrategySignal:
		sig := syscall.SIGTERM
		if a.Force {
			sig = syscall.SIGKILL
		}
		return procinfo.SendSignal(a.Owner.Proc.PID, sig)
	default:
		return fmt.Errorf("unknown strategy: %v", a.Strategy)
	}
}

// OwnerAware returns a TerminateFunc that inspects each PID's ownership
// and stops it through the owning manager when there is one.
func OwnerAware(force bool) TerminateFunc {
	return func(pid, port int) error {
		oc, err := owner.Detect(pid, port)
		if err != nil {
			// Gone between enumeration and signaling: a benign race.
			return procinfo.ErrAlreadyExited
		}
		return Plan(oc, force).Execute()
	}
}
