// Package netstat reads the live OS socket table and maps bound sockets
// to their owning processes.
package netstat

// Binding represents one socket bound to a port. Bindings are ephemeral:
// they describe the socket table at the moment of the lookup and are
// never persisted.
type Binding struct {
	PID       int
	Port      int
	Protocol  string // "tcp", "tcp6", "udp", "udp6"
	Interface string // local address the socket is bound to
	Listening bool
}
