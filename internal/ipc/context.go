// Package ipc implements figterm's three AF_UNIX sockets: the legacy
// base64-framed command socket, the JSON hook socket, and the
// insertion-request listener.
package ipc

// Context is embedded in every hook payload.
type Context struct {
	SessionID          string `json:"sessionId"`
	PID                int    `json:"pid"`
	Hostname            string `json:"hostname"`
	TTYs                string `json:"ttys"`
	IntegrationVersion  int    `json:"integrationVersion"`
}
