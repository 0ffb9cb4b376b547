package whatsapp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when a send or roster operation is attempted
	// before the session has completed its handshake.
	ErrNotReady = errors.New("whatsapp: session not ready")

	// ErrInvalidTarget is returned for group operations on identifiers that
	// do not resolve to a group.
	ErrInvalidTarget = errors.New("whatsapp: target is not a group")
)

// SendError wraps a network-level failure to deliver one message.
type SendError struct {
	To    string
	Cause error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("whatsapp: send to %s failed: %v", e.To, e.Cause)
}

func (e *SendError) Unwrap() error { return e.Cause }
