package whatsapp

import "context"

// ChatInfo describes a chat resolved on the network.
type ChatInfo struct {
	ID           string
	Name         string
	IsGroup      bool
	Participants []string // canonical suffixed addresses
}

// EventHandlers receives lifecycle and message callbacks from the network.
// Handlers may be nil; the transport must tolerate that.
type EventHandlers struct {
	QR            func(code string)
	Authenticated func(creds []byte)
	Ready         func()
	Disconnected  func(reason string)
	Message       func(from, body string)
}

// Network is the external messaging-network collaborator. The production
// implementation is the websocket Bridge; tests substitute fakes.
type Network interface {
	// Start connects the transport, handing it a previously persisted
	// credential blob (nil when none exists) so the scan step can be skipped.
	Start(ctx context.Context, creds []byte, handlers EventHandlers) error

	// Stop disconnects the transport.
	Stop(ctx context.Context) error

	// SendMessage delivers body to the canonical suffixed address.
	SendMessage(ctx context.Context, to, body string) error

	// ContactName resolves a display name for a contact address.
	ContactName(ctx context.Context, addr string) (string, error)

	// ChatInfo resolves a chat (group or individual) by address.
	ChatInfo(ctx context.Context, addr string) (ChatInfo, error)

	// CreateGroup creates a group and returns its address.
	CreateGroup(ctx context.Context, name string, participants []string) (string, error)
}
