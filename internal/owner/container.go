package owner

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Container holds container details for a process.
type Container struct {
	ID      string
	Name    string
	Runtime string // "podman" or "docker"
}

// String returns a human-readable description of the container.
func (c Container) String() string {
	name := c.Name
	if name == "" {
		name = ShortID(c.ID)
	}
	return fmt.Sprintf("%s container %s", c.Runtime, name)
}

// StopContainer stops a container gracefully through its runtime.
func StopContainer(c *Container) error {
	return runRuntime(c.Runtime, "stop", c.ID)
}

// KillContainer forcefully kills a container through its runtime.
func KillContainer(c *Container) error {
	return runRuntime(c.Runtime, "kill", c.ID)
}

func runRuntime(runtime string, args ...string) error {
	cmd := exec.Command(runtime, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ShortID returns the first 12 characters of a container ID.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func containerName(containerID, runtime string) string {
	out, err := exec.Command(runtime, "inspect", "--format", "{{.Name}}", containerID).Output()
	if err != nil {
		if len(containerID) <= 12 {
			return ""
		}
		// Retry with the short ID some runtimes index by.
		out, err = exec.Command(runtime, "inspect", "--format", "{{.Name}}", containerID[:12]).Output()
		if err != nil {
			return ""
		}
	}
	// Docker prefixes names with /
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "/")
}
