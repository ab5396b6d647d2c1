package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"sync"
)

// hookMagic is the 10-byte literal framing prefix.
var hookMagic = []byte{0x1B, '@', 'f', 'i', 'g', '-', 'j', 's', 'o', 'n'}

// HookSocket is the JSON hook channel at $TMPDIR/fig.socket. Framing: the
// 10-byte magic, an 8-byte big-endian length, then that many bytes of
// UTF-8 JSON.
type HookSocket struct {
	path string

	mu   sync.Mutex
	conn net.Conn
}

// NewHookSocket builds a HookSocket targeting path.
func NewHookSocket(path string) *HookSocket {
	return &HookSocket{path: path}
}

// SendHook marshals payload as JSON and writes it framed. A write failure
// drops the cached connection rather than retrying; the next hook
// supersedes a dropped one.
func (s *HookSocket) SendHook(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ipc: hook marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := net.Dial("unix", s.path)
		if err != nil {
			return fmt.Errorf("ipc: hook socket dial: %w", err)
		}
		s.conn = conn
	}

	var frame bytes.Buffer
	frame.Write(hookMagic)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	frame.Write(lenBuf[:])
	frame.Write(data)

	if _, err := s.conn.Write(frame.Bytes()); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("ipc: hook socket write: %w", err)
	}
	return nil
}

// Close drops any cached connection.
func (s *HookSocket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// --- hook payload shapes ---------------------------------------------------

type initHook struct {
	Hook struct {
		Init struct {
			Context Context `json:"context"`
			Bundle  string  `json:"bundle"`
		} `json:"init"`
	} `json:"hook"`
}

// InitHook builds the initial hook payload.
func InitHook(ctx Context, bundle string) any {
	var h initHook
	h.Hook.Init.Context = ctx
	h.Hook.Init.Bundle = bundle
	return h
}

type promptHook struct {
	Hook struct {
		Prompt struct {
			Context Context `json:"context"`
		} `json:"prompt"`
	} `json:"hook"`
}

// PromptHook builds the new-prompt hook payload.
func PromptHook(ctx Context) any {
	var h promptHook
	h.Hook.Prompt.Context = ctx
	return h
}

type preExecHook struct {
	Hook struct {
		PreExec struct {
			Context Context `json:"context"`
		} `json:"preExec"`
	} `json:"hook"`
}

// PreExecHook builds the pre-exec hook payload.
func PreExecHook(ctx Context) any {
	var h preExecHook
	h.Hook.PreExec.Context = ctx
	return h
}

type editBufferHook struct {
	Hook struct {
		EditBuffer struct {
			Text    string  `json:"text"`
			Cursor  int     `json:"cursor"`
			Context Context `json:"context"`
		} `json:"editBuffer"`
	} `json:"hook"`
}

// EditBufferHook builds the edit-buffer hook payload.
func EditBufferHook(ctx Context, text string, cursor int) any {
	var h editBufferHook
	h.Hook.EditBuffer.Text = text
	h.Hook.EditBuffer.Cursor = cursor
	h.Hook.EditBuffer.Context = ctx
	return h
}
