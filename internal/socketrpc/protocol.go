package socketrpc

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes model.Controller over a Unix domain socket.
// Each method maps 1:1 to the Controller interface.
//
//   Method          Params                        Result
//   ─────────────   ───────────────────────────   ────────────────
//   State           (none)                        WatchState
//   Next            (none)                        true
//   Deliver         {Frame: string}               int (tuples applied)
//   SetConnection   {Connected: bool}             bool
//   Refresh         (none)                        true
//
// Deliver takes one frame in the phone wire format so tuple order survives
// the trip.
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (watch stopped, no phone)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

const (
	codeParse       = -32700
	codeNoMethod    = -32601
	codeBadParams   = -32602
	codeInternal    = -32603
	codeApplication = -32000
)

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/cards/cards.sock, falling back to
// ~/.local/state/cards/cards.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "cards", "cards.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/cards.sock"
	}
	return filepath.Join(home, ".local", "state", "cards", "cards.sock")
}
