//go:build darwin

package owner

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
)

// detectContainer checks if the port is served by a container on macOS.
// Docker and Podman run in a VM there, so cgroup-based detection doesn't
// work; instead we ask the runtime which container publishes the port.
func detectContainer(pid, port int) *Container {
	if port == 0 {
		return nil
	}
	portStr := strconv.Itoa(port)

	for _, runtime := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(runtime); err != nil {
			continue
		}
		out, err := exec.Command(runtime, "ps", "--format", "{{json .}}").Output()
		if err != nil {
			continue
		}
		for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if line == "" {
				continue
			}
			var entry struct {
				ID    string `json:"ID"`
				Names string `json:"Names"`
				Ports string `json:"Ports"`
			}
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				continue
			}
			// Ports format: "0.0.0.0:8000->8000/tcp, :::8000->8000/tcp"
			if strings.Contains(entry.Ports, ":"+portStr+"->") {
				return &Container{
					ID:      entry.ID,
					Name:    strings.TrimPrefix(entry.Names, "/"),
					Runtime: runtime,
				}
			}
		}
	}
	return nil
}
