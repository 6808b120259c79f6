package owner

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// detectUnit checks if a process is managed by systemd and returns the
// unit name, or "" for an unmanaged process. On hosts without systemd
// both probes fail cleanly and the answer is "".
func detectUnit(pid int) string {
	if unit := unitFromCgroup(pid); unit != "" {
		return unit
	}
	return unitFromSystemctl(pid)
}

func unitFromCgroup(pid int) string {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "cgroup"))
	if err != nil {
		return ""
	}
	return parseCgroupUnit(string(data))
}

func parseCgroupUnit(content string) string {
	for _, line := range strings.Split(content, "\n") {
		// Format: hierarchy-ID:controller-list:cgroup-path
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 3 {
			continue
		}

		for _, seg := range strings.Split(parts[2], "/") {
			if !strings.HasSuffix(seg, ".service") {
				continue
			}
			if isInfrastructureUnit(seg) {
				continue
			}
			return seg
		}
	}
	return ""
}

// isInfrastructureUnit returns true for systemd units that must never be
// stopped to free a port: they manage user sessions or container
// infrastructure, not the process actually holding the socket.
func isInfrastructureUnit(unit string) bool {
	// User session managers (user@1000.service etc.)
	if strings.HasPrefix(unit, "user@") {
		return true
	}
	switch unit {
	case "docker.service", "podman.service", "containerd.service":
		return true
	case "gdm.service", "sddm.service", "lightdm.service", "display-manager.service":
		return true
	}
	return false
}

func unitFromSystemctl(pid int) string {
	out, err := exec.Command("systemctl", "status", strconv.Itoa(pid)).Output()
	if err != nil {
		return ""
	}

	// First line typically contains: ● unit-name.service - Description
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "● ")
		if !strings.Contains(line, ".service") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) == 0 || !strings.HasSuffix(parts[0], ".service") {
			continue
		}
		unit := parts[0]
		if isInfrastructureUnit(unit) {
			continue
		}
		if !isMainPIDOfUnit(pid, unit) {
			continue
		}
		return unit
	}

	return ""
}

// isMainPIDOfUnit checks whether the given PID is the main process of a
// systemd unit, not just a descendant running inside its cgroup.
func isMainPIDOfUnit(pid int, unit string) bool {
	out, err := exec.Command("systemctl", "show", "--property=MainPID", unit).Output()
	if err != nil {
		return false
	}
	// Output is like "MainPID=12345"
	mainPID := strings.TrimPrefix(strings.TrimSpace(string(out)), "MainPID=")
	return mainPID == strconv.Itoa(pid)
}

// StopUnit stops a systemd service.
func StopUnit(unit string) error {
	cmd := exec.Command("systemctl", "stop", unit)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
