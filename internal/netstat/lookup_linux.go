//go:build linux

package netstat

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const tcpStateListen = 0x0A

// Lookup returns all sockets currently bound to the queried port, in any
// state. Listening sockets are the primary target of a reclaim, but a
// lingering connection keeps its owner on the list too.
func Lookup(q Query) ([]Binding, error) {
	return fromProc(q, false)
}

// LookupAll returns every listening socket on the host.
func LookupAll() ([]Binding, error) {
	return fromProc(Query{}, true)
}

func fromProc(q Query, listenOnly bool) ([]Binding, error) {
	inodeMap := make(map[uint64]socketInfo)

	for _, proto := range []string{"tcp", "tcp6", "udp", "udp6"} {
		path := filepath.Join("/proc/net", proto)
		entries, err := parseProcNet(path)
		if err != nil {
			continue
		}
		isTCP := strings.HasPrefix(proto, "tcp")
		for _, e := range entries {
			listening := !isTCP || e.state == tcpStateListen
			if listenOnly && !listening {
				continue
			}
			if !q.Matches(e.localPort) || !q.matchesAddr(e.localAddr) {
				continue
			}
			inodeMap[e.inode] = socketInfo{
				port:      e.localPort,
				protocol:  proto,
				iface:     e.localAddr,
				listening: listening,
			}
		}
	}

	if len(inodeMap) == 0 {
		return nil, nil
	}

	return resolveOwners(inodeMap), nil
}

type socketInfo struct {
	port      int
	protocol  string
	iface     string
	listening bool
}

type procNetEntry struct {
	localAddr string
	localPort int
	state     int
	inode     uint64
}

func parseProcNet(path string) ([]procNetEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []procNetEntry
	scanner := bufio.NewScanner(f)
	scanner.Scan() // skip header

	for scanner.Scan() {
		e, err := parseProcNetLine(scanner.Text())
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}

	return entries, scanner.Err()
}

func parseProcNetLine(line string) (procNetEntry, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 10 {
		return procNetEntry{}, fmt.Errorf("short line")
	}

	localAddr, localPort, err := parseHexAddr(fields[1])
	if err != nil {
		return procNetEntry{}, err
	}

	state, err := strconv.ParseInt(fields[3], 16, 32)
	if err != nil {
		return procNetEntry{}, err
	}

	inode, err := strconv.ParseUint(fields[9], 10, 64)
	if err != nil {
		return procNetEntry{}, err
	}

	return procNetEntry{
		localAddr: localAddr,
		localPort: localPort,
		state:     int(state),
		inode:     inode,
	}, nil
}

func parseHexAddr(s string) (addr string, port int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid address format: %s", s)
	}

	p, err := strconv.ParseInt(parts[1], 16, 32)
	if err != nil {
		return "", 0, err
	}
	port = int(p)

	hexAddr := parts[0]
	switch len(hexAddr) {
	case 8: // IPv4
		b, err := hex.DecodeString(hexAddr)
		if err != nil {
			return "", 0, err
		}
		// /proc/net/tcp stores addresses in little-endian
		addr = fmt.Sprintf("%d.%d.%d.%d", b[3], b[2], b[1], b[0])
	case 32: // IPv6, only the wildcard matters for matching
		addr = "::"
	default:
		addr = hexAddr
	}

	return addr, port, nil
}

// resolveOwners walks /proc/*/fd looking for socket links whose inode
// appears in inodeMap. Processes we may not inspect are skipped silently;
// a binding without a discoverable owner is of no use to a reclaim.
func resolveOwners(inodeMap map[uint64]socketInfo) []Binding {
	var bindings []Binding
	seen := make(map[string]bool)

	procDir, err := os.Open("/proc")
	if err != nil {
		return nil
	}
	defer procDir.Close()

	entries, err := procDir.Readdirnames(-1)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry)
		if err != nil {
			continue
		}

		fdDir := filepath.Join("/proc", entry, "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}

			if !strings.HasPrefix(link, "socket:[") {
				continue
			}

			inode, err := strconv.ParseUint(link[8:len(link)-1], 10, 64)
			if err != nil {
				continue
			}

			info, ok := inodeMap[inode]
			if !ok {
				continue
			}

			key := fmt.Sprintf("%d:%d:%s", pid, info.port, info.protocol)
			if seen[key] {
				continue
			}
			seen[key] = true

			bindings = append(bindings, Binding{
				PID:       pid,
				Port:      info.port,
				Protocol:  info.protocol,
				Interface: info.iface,
				Listening: info.listening,
			})
		}
	}

	return bindings
}
