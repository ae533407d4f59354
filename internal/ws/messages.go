// Package ws defines the WebSocket protocol for live console sessions.
package ws

import (
	"encoding/json"

	"github.com/cadencehq/console/internal/console"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "open", "refresh", "search", "filter", "view_mode", "open_form", "set_field", "submit", "close_form", "delete", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// OpenData selects the collection the session looks at.
type OpenData struct {
	Collection string `json:"collection"`
}

// SearchData is the payload for "search" messages.
type SearchData struct {
	Query string `json:"query"`
}

// FilterData sets one filter. A null value clears it. The value shape
// follows the filter type: string, string array, or {from, to}.
type FilterData struct {
	FilterID string `json:"filter_id"`
	Value    any    `json:"value"`
}

// ViewModeData is the payload for "view_mode" messages.
type ViewModeData struct {
	Mode string `json:"mode"`
}

// OpenFormData opens the create or edit modal.
type OpenFormData struct {
	Mode     string `json:"mode"` // "create" or "edit"
	RecordID string `json:"record_id,omitempty"`
}

// SetFieldData carries one raw form input.
type SetFieldData struct {
	Key string `json:"key"`
	Raw string `json:"raw"`
}

// DeleteData identifies the record to delete.
type DeleteData struct {
	RecordID string `json:"record_id"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "state", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData is sent once after the upgrade.
type SessionData struct {
	SessionID string   `json:"session_id"`
	Tenant    string   `json:"tenant"`
	Available []string `json:"available"` // registered collection IDs
}

// StateData wraps a page snapshot.
type StateData struct {
	State console.State `json:"state"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
