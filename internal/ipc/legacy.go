package ipc

import (
	"encoding/base64"
	"fmt"
	"net"
	"sync"
)

// LegacySocket is the base64-framed outbound channel at /tmp/fig.socket. A
// send base64-encodes a newline-terminated ASCII command and writes it; the
// cached connection is dropped on any write failure so the next Send
// reconnects.
type LegacySocket struct {
	path string

	mu   sync.Mutex
	conn net.Conn
}

// NewLegacySocket builds a LegacySocket targeting path. The connection is
// opened lazily on first Send.
func NewLegacySocket(path string) *LegacySocket {
	return &LegacySocket{path: path}
}

// Send base64-encodes cmd, appends a newline, and writes it. Failures are
// soft: the cached connection is cleared and the error returned for the
// caller to log, never to abort the loop.
func (s *LegacySocket) Send(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := net.Dial("unix", s.path)
		if err != nil {
			return fmt.Errorf("ipc: legacy socket dial: %w", err)
		}
		s.conn = conn
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(cmd))
	if _, err := s.conn.Write([]byte(encoded + "\n")); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("ipc: legacy socket write: %w", err)
	}
	return nil
}

// Close drops any cached connection.
func (s *LegacySocket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
