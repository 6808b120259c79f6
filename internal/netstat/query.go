package netstat

import (
	"fmt"
	"strconv"
	"strings"
)

// Query selects sockets by port and, optionally, by bound interface.
// A zero Port matches every port.
type Query struct {
	Interface string // e.g. "127.0.0.1", "localhost", "" for any
	Port      int
}

// Matches reports whether a socket on the given port is selected.
func (q Query) Matches(port int) bool {
	return q.Port == 0 || port == q.Port
}

// matchesAddr reports whether a socket bound to addr is selected.
// Wildcard binds match any requested interface.
func (q Query) matchesAddr(addr string) bool {
	if q.Interface == "" {
		return true
	}
	return addr == q.Interface || addr == "0.0.0.0" || addr == "::"
}

// ParseQuery parses a port argument into a Query.
// Supported forms:
//   - "8000"           → any interface, port 8000
//   - ":8000"          → any interface, port 8000
//   - "localhost:8000" → localhost, port 8000
//   - "0.0.0.0:80"     → all interfaces, port 80
func ParseQuery(arg string) (Query, error) {
	if arg == "" {
		return Query{}, fmt.Errorf("empty port argument")
	}

	var iface, portPart string
	if idx := strings.LastIndex(arg, ":"); idx >= 0 {
		prefix := arg[:idx]
		portPart = arg[idx+1:]
		// A numeric prefix would be a mistyped port, not an interface.
		if prefix != "" && !isNumeric(prefix) {
			iface = prefix
		}
	} else {
		portPart = arg
	}

	if portPart == "" {
		return Query{}, fmt.Errorf("missing port number in %q", arg)
	}

	port, err := parsePort(portPart)
	if err != nil {
		return Query{}, fmt.Errorf("invalid port in %q: %w", arg, err)
	}

	return Query{Interface: iface, Port: port}, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid port number", s)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range (1-65535)", p)
	}
	return p, nil
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
