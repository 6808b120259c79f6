// Package procinfo reads details about running processes from the OS
// process table.
package procinfo

import (
	"os"
	"time"
)

// Info holds details about a running process.
type Info struct {
	PID        int
	Command    string
	Executable string
	User       string
	UID        int
	MemoryKB   int64
	StartTime  time.Time
	ParentPID  int
	Children   []int
}

// Uptime returns the duration since the process started.
func (i Info) Uptime() time.Duration {
	if i.StartTime.IsZero() {
		return 0
	}
	return time.Since(i.StartTime)
}

// IsPrivileged returns true if signaling this process requires elevated
// privileges.
func (i Info) IsPrivileged() bool {
	return i.UID != os.Getuid() && os.Getuid() != 0
}
