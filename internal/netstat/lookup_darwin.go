//go:build darwin

package netstat

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Lookup returns all TCP sockets currently bound to the queried port.
// macOS has no /proc, so the socket table comes from lsof. UDP sockets
// are not reported here; a reclaim on macOS targets TCP listeners.
func Lookup(q Query) ([]Binding, error) {
	return fromLSOF(q, false)
}

// LookupAll returns every listening TCP socket on the host.
func LookupAll() ([]Binding, error) {
	return fromLSOF(Query{}, true)
}

func fromLSOF(q Query, listenOnly bool) ([]Binding, error) {
	args := []string{"-iTCP"}
	if listenOnly {
		args = append(args, "-sTCP:LISTEN")
	}
	args = append(args, "-n", "-P", "-F", "pcn")

	cmd := exec.Command("lsof", args...)
	out, err := cmd.Output()
	if err != nil && len(out) == 0 {
		// lsof exits 1 when no files match; empty output means truly nothing
		return nil, nil
	}
	return parseLSOFOutput(out, q)
}

func parseLSOFOutput(data []byte, q Query) ([]Binding, error) {
	var bindings []Binding
	seen := make(map[string]bool)

	var pid int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		field := line[0]
		value := line[1:]

		switch field {
		case 'p':
			p, err := strconv.Atoi(value)
			if err != nil {
				continue
			}
			pid = p
		case 'n':
			// Format: *:8000 or 127.0.0.1:8000 or [::]:8000
			colonIdx := strings.LastIndex(value, ":")
			if colonIdx < 0 {
				continue
			}
			p, err := strconv.Atoi(value[colonIdx+1:])
			if err != nil {
				continue
			}
			if !q.Matches(p) {
				continue
			}

			iface := value[:colonIdx]
			if iface == "*" || iface == "" {
				iface = "0.0.0.0"
			} else {
				iface = strings.Trim(iface, "[]")
			}
			if !q.matchesAddr(iface) {
				continue
			}

			key := fmt.Sprintf("%d:%d", pid, p)
			if seen[key] {
				continue
			}
			seen[key] = true

			bindings = append(bindings, Binding{
				PID:       pid,
				Port:      p,
				Protocol:  "tcp",
				Interface: iface,
				Listening: true,
			})
		}
	}
	return bindings, scanner.Err()
}
