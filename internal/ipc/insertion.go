package ipc

import (
	"fmt"
	"net"
	"os"
)

// InsertionListener accepts connections at /tmp/figterm-<SESSION_ID>.socket.
// Each accepted client's single message is read with ReadInsertion: one
// write per connection, no framing, then the client is closed.
type InsertionListener struct {
	path     string
	listener *net.UnixListener
}

// Listen opens the insertion socket at path, removing any stale socket file
// left behind by a previous, uncleanly-terminated session first.
func Listen(path string) (*InsertionListener, error) {
	_ = os.Remove(path)
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: resolve insertion socket: %w", err)
	}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen insertion socket: %w", err)
	}
	return &InsertionListener{path: path, listener: l}, nil
}

// File returns the listener's underlying file descriptor, for use in the
// proxy loop's readiness set.
func (l *InsertionListener) File() (*os.File, error) {
	return l.listener.File()
}

// Accept blocks until a client connects. The caller is expected to keep at
// most one accepted client at a time.
func (l *InsertionListener) Accept() (net.Conn, error) {
	return l.listener.Accept()
}

// ReadInsertion reads the single message a connected client sends, then
// closes the connection: no framing, write once per connection.
func ReadInsertion(conn net.Conn) ([]byte, error) {
	defer conn.Close()
	buf := make([]byte, 4096)
	var out []byte
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	return out, nil
}

// Close stops listening and unlinks the socket path.
func (l *InsertionListener) Close() error {
	err := l.listener.Close()
	_ = os.Remove(l.path)
	return err
}
