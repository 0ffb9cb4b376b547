package whatsapp

import "encoding/json"

// Frame types for the bridge websocket protocol.
const (
	frameTypeRequest  = "req"
	frameTypeResponse = "res"
	frameTypeEvent    = "event"
)

// frame is the envelope for every message exchanged with the bridge
// sidecar. Type discriminates between request, response, and event frames.
type frame struct {
	Type string `json:"type"`

	// Request fields
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// Response fields
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// Event fields
	Event string `json:"event,omitempty"`

	// Error (response only)
	Error *errorShape `json:"error,omitempty"`
}

// errorShape is the standard error format in response frames.
type errorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request params and response payloads.

type initParams struct {
	Session json.RawMessage `json:"session,omitempty"`
}

type sendParams struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type contactParams struct {
	ID string `json:"id"`
}

type contactPayload struct {
	Name string `json:"name"`
}

type chatParams struct {
	ID string `json:"id"`
}

type chatPayload struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	IsGroup      bool     `json:"isGroup"`
	Participants []string `json:"participants,omitempty"`
}

type groupCreateParams struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type groupCreatePayload struct {
	ID string `json:"id"`
}

// Event payloads.

type qrEvent struct {
	Code string `json:"code"`
}

type authEvent struct {
	Session json.RawMessage `json:"session"`
}

type disconnectEvent struct {
	Reason string `json:"reason"`
}

type messageEvent struct {
	From string `json:"from"`
	Body string `json:"body"`
}
