// Package whatsapp implements the WhatsApp session lifecycle, outbound
// dispatch, and group roster operations on top of a Network transport.
package whatsapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mfcastro/juniorbot/internal/logging"
)

// State is the connection lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateAwaitingScan  State = "awaiting_scan"
	StateAuthenticated State = "authenticated"
	StateReady         State = "ready"
	StateDisconnected  State = "disconnected"
)

// EventType identifies a lifecycle event.
type EventType string

const (
	EventQR            EventType = "qr"
	EventAuthenticated EventType = "authenticated"
	EventReady         EventType = "ready"
	EventDisconnected  EventType = "disconnected"
)

// Event is a lifecycle notification delivered to subscribers.
type Event struct {
	Type   EventType `json:"type"`
	QR     string    `json:"qr,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Time   time.Time `json:"time"`
}

// SessionStatus is a point-in-time snapshot of the session.
type SessionStatus struct {
	State State  `json:"state"`
	Ready bool   `json:"ready"`
	QR    string `json:"qr,omitempty"`
	Error string `json:"lastError,omitempty"`
}

// Session owns the lifecycle of the single WhatsApp connection. Lifecycle
// transitions are serialized under one mutex; the process holds exactly
// one Session.
type Session struct {
	net   Network
	creds CredentialStore
	log   *logging.Logger

	mu      sync.RWMutex
	state   State
	ready   bool
	qr      string
	lastErr string
	handler func(from, body string)

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewSession creates a session over the given transport and credential store.
func NewSession(net Network, creds CredentialStore, log *logging.Logger) *Session {
	return &Session{
		net:   net,
		creds: creds,
		log:   log.Sub("whatsapp"),
		state: StateUninitialized,
		subs:  make(map[int]func(Event)),
	}
}

// Initialize starts the transport, supplying a previously persisted
// credential blob when one exists so the QR scan can be skipped. Valid
// from the uninitialized and disconnected states; reconnecting after a
// disconnect requires a fresh Initialize.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized && s.state != StateDisconnected {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("whatsapp: initialize called in state %q", state)
	}
	s.state = StateAwaitingScan
	s.ready = false
	s.qr = ""
	s.lastErr = ""
	s.mu.Unlock()

	blob, err := s.creds.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load saved credentials, starting fresh")
		blob = nil
	}
	if blob != nil {
		s.log.Info().Msg("restoring saved session, scan may be skipped")
	}

	handlers := EventHandlers{
		QR:            s.onQR,
		Authenticated: s.onAuthenticated,
		Ready:         s.onReady,
		Disconnected:  s.onDisconnected,
		Message:       s.onMessage,
	}

	if err := s.net.Start(ctx, blob, handlers); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.lastErr = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("whatsapp: starting transport: %w", err)
	}

	s.log.Info().Msg("session initializing")
	return nil
}

// Shutdown stops the transport and marks the session disconnected.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.state = StateDisconnected
	s.ready = false
	s.mu.Unlock()

	s.log.Info().Msg("shutting down session")
	return s.net.Stop(ctx)
}

// OnMessage registers the handler for inbound messages.
func (s *Session) OnMessage(handler func(from, body string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Subscribe registers a lifecycle event listener and returns a cancel func.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether the session has completed its handshake. All
// send and roster operations require this to be true.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// QR returns the pending scan challenge, empty when none is outstanding.
func (s *Session) QR() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qr
}

// Status returns a snapshot of the session.
func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionStatus{
		State: s.state,
		Ready: s.ready,
		QR:    s.qr,
		Error: s.lastErr,
	}
}

// ContactName resolves a display name via the network. Enrichment only;
// callers must tolerate failure.
func (s *Session) ContactName(ctx context.Context, addr string) (string, error) {
	if !s.Ready() {
		return "", ErrNotReady
	}
	return s.net.ContactName(ctx, addr)
}

func (s *Session) onQR(code string) {
	s.mu.Lock()
	s.qr = code
	s.mu.Unlock()

	s.log.Info().Msg("QR code received, scan to authenticate")
	s.publish(Event{Type: EventQR, QR: code, Time: time.Now()})
}

func (s *Session) onAuthenticated(creds []byte) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.qr = ""
	s.mu.Unlock()

	s.log.Info().Msg("authenticated")

	// A persist failure is reported but non-fatal: the in-memory session
	// stays usable, only the next restart will need a fresh scan.
	if len(creds) > 0 {
		if err := s.creds.Save(creds); err != nil {
			s.log.Error().Err(err).Msg("failed to persist session credentials")
		}
	}

	s.publish(Event{Type: EventAuthenticated, Time: time.Now()})
}

func (s *Session) onReady() {
	s.mu.Lock()
	s.state = StateReady
	s.ready = true
	s.mu.Unlock()

	s.log.Info().Msg("client ready")
	s.publish(Event{Type: EventReady, Time: time.Now()})
}

func (s *Session) onDisconnected(reason string) {
	s.mu.Lock()
	s.state = StateDisconnected
	s.ready = false
	s.lastErr = reason
	s.mu.Unlock()

	s.log.Warn().Str("reason", reason).Msg("disconnected")
	s.publish(Event{Type: EventDisconnected, Reason: reason, Time: time.Now()})
}

func (s *Session) onMessage(from, body string) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler != nil {
		handler(from, body)
	}
}

func (s *Session) publish(evt Event) {
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(evt)
	}
}
