//go:build linux

package procinfo

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Gather collects information about a process by PID.
func Gather(pid int) (Info, error) {
	procPath := filepath.Join("/proc", strconv.Itoa(pid))

	if _, err := os.Stat(procPath); err != nil {
		return Info{}, fmt.Errorf("process %d not found", pid)
	}

	info := Info{PID: pid}

	// cmdline is null-separated
	if cmdline, err := os.ReadFile(filepath.Join(procPath, "cmdline")); err == nil {
		parts := strings.Split(string(cmdline), "\x00")
		var nonEmpty []string
		for _, p := range parts {
			if p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		info.Command = strings.Join(nonEmpty, " ")
	}

	if exe, err := os.Readlink(filepath.Join(procPath, "exe")); err == nil {
		info.Executable = exe
	}

	if status, err := os.ReadFile(filepath.Join(procPath, "status")); err == nil {
		parseStatus(string(status), &info)
	}

	info.StartTime = readStartTime(pid)
	info.Children = findChildren(pid)

	return info, nil
}

func parseStatus(status string, info *Info) {
	for _, line := range strings.Split(status, "\n") {
		switch {
		case strings.HasPrefix(line, "PPid:"):
			fmt.Sscanf(strings.TrimPrefix(line, "PPid:"), "%d", &info.ParentPID)
		case strings.HasPrefix(line, "Uid:"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				uid, _ := strconv.Atoi(fields[1])
				info.UID = uid
				if u, err := user.LookupId(fields[1]); err == nil {
					info.User = u.Username
				} else {
					info.User = fields[1]
				}
			}
		case strings.HasPrefix(line, "VmRSS:"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				info.MemoryKB, _ = strconv.ParseInt(fields[1], 10, 64)
			}
		}
	}
}

func readStartTime(pid int) time.Time {
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return time.Time{}
	}

	// Fields in stat are space-separated, but comm (field 2) can contain
	// spaces and is enclosed in parentheses. Find the last ')' to skip it.
	s := string(stat)
	idx := strings.LastIndex(s, ")")
	if idx < 0 {
		return time.Time{}
	}
	fields := strings.Fields(s[idx+2:])
	if len(fields) < 20 {
		return time.Time{}
	}

	// Field index 19 (from after comm) is starttime in clock ticks
	startTicks, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return time.Time{}
	}

	bootTime := readBootTime()
	if bootTime.IsZero() {
		return time.Time{}
	}

	clkTck := uint64(100) // sysconf(_SC_CLK_TCK), typically 100 on Linux
	startSecs := startTicks / clkTck
	return bootTime.Add(time.Duration(startSecs) * time.Second)
}

func readBootTime() time.Time {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return time.Time{}
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "btime ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if btime, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
					return time.Unix(btime, 0)
				}
			}
		}
	}
	return time.Time{}
}

func findChildren(pid int) []int {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "task", strconv.Itoa(pid), "children"))
	if err != nil {
		return nil
	}
	var children []int
	for _, s := range strings.Fields(string(data)) {
		if child, err := strconv.Atoi(s); err == nil {
			children = append(children, child)
		}
	}
	return children
}
