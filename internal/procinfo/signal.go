package procinfo

import (
	"errors"
	"fmt"
	"syscall"
)

// Sentinel errors for signal delivery, inspected with errors.Is.
var (
	// ErrAlreadyExited reports that the target was gone by the time the
	// signal was sent. Callers racing process exit treat this as success.
	ErrAlreadyExited = errors.New("process already exited")

	// ErrPermissionDenied reports insufficient rights to signal the target.
	ErrPermissionDenied = errors.New("permission denied")
)

// SendSignal delivers sig to pid, mapping the raw errno values into the
// package sentinels.
func SendSignal(pid int, sig syscall.Signal) error {
	err := syscall.Kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syscall.ESRCH):
		return ErrAlreadyExited
	case errors.Is(err, syscall.EPERM):
		return ErrPermissionDenied
	}
	return fmt.Errorf("signal %v to pid %d: %w", sig, pid, err)
}

// Alive reports whether pid currently refers to a live process we can see.
func Alive(pid int) bool {
	err := SendSignal(pid, 0)
	return err == nil || errors.Is(err, ErrPermissionDenied)
}
