package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mfcastro/juniorbot/internal/logging"
)

// Bridge implements Network over a websocket connection to the WhatsApp
// bridge sidecar. Requests carry a correlation ID and are matched against
// response frames; unsolicited event frames drive the session lifecycle.
type Bridge struct {
	url string
	log *logging.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu      sync.Mutex
	pending map[string]chan frame
	closed  bool
}

// NewBridge creates a bridge transport pointing at the sidecar's ws URL.
func NewBridge(url string, log *logging.Logger) *Bridge {
	return &Bridge{
		url: url,
		log: log.Sub("bridge"),
	}
}

// Start dials the sidecar, hands over any saved credential blob so the
// sidecar can restore the session, and begins the read loop.
func (b *Bridge) Start(ctx context.Context, creds []byte, handlers EventHandlers) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dialing bridge %s: %w", b.url, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.pending = make(map[string]chan frame)
	b.closed = false
	b.mu.Unlock()

	go b.readLoop(handlers)

	if err := b.call(ctx, "session.init", initParams{Session: creds}, nil); err != nil {
		b.Stop(ctx)
		return fmt.Errorf("initializing bridge session: %w", err)
	}

	b.log.Info().Str("url", b.url).Msg("connected to bridge")
	return nil
}

// Stop closes the websocket connection.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.closed || b.conn == nil {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	conn := b.conn
	b.mu.Unlock()

	b.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
	b.writeMu.Unlock()

	return conn.Close()
}

func (b *Bridge) SendMessage(ctx context.Context, to, body string) error {
	return b.call(ctx, "message.send", sendParams{To: to, Body: body}, nil)
}

func (b *Bridge) ContactName(ctx context.Context, addr string) (string, error) {
	var payload contactPayload
	if err := b.call(ctx, "contact.get", contactParams{ID: addr}, &payload); err != nil {
		return "", err
	}
	return payload.Name, nil
}

func (b *Bridge) ChatInfo(ctx context.Context, addr string) (ChatInfo, error) {
	var payload chatPayload
	if err := b.call(ctx, "chat.get", chatParams{ID: addr}, &payload); err != nil {
		return ChatInfo{}, err
	}
	return ChatInfo{
		ID:           payload.ID,
		Name:         payload.Name,
		IsGroup:      payload.IsGroup,
		Participants: payload.Participants,
	}, nil
}

func (b *Bridge) CreateGroup(ctx context.Context, name string, participants []string) (string, error) {
	var payload groupCreatePayload
	params := groupCreateParams{Name: name, Participants: participants}
	if err := b.call(ctx, "group.create", params, &payload); err != nil {
		return "", err
	}
	return payload.ID, nil
}

// call sends a request frame and waits for the matching response.
func (b *Bridge) call(ctx context.Context, method string, params any, out any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling %s params: %w", method, err)
	}

	id := uuid.New().String()
	ch := make(chan frame, 1)

	b.mu.Lock()
	if b.closed || b.conn == nil {
		b.mu.Unlock()
		return fmt.Errorf("bridge: not connected")
	}
	conn := b.conn
	b.pending[id] = ch
	b.mu.Unlock()

	req := frame{Type: frameTypeRequest, ID: id, Method: method, Params: data}

	b.writeMu.Lock()
	err = conn.WriteJSON(req)
	b.writeMu.Unlock()
	if err != nil {
		b.unregister(id)
		return fmt.Errorf("bridge: writing %s: %w", method, err)
	}

	select {
	case res := <-ch:
		if res.Error != nil {
			return fmt.Errorf("bridge: %s: %s", method, res.Error.Message)
		}
		if res.OK != nil && !*res.OK {
			return fmt.Errorf("bridge: %s rejected", method)
		}
		if out != nil && len(res.Payload) > 0 {
			if err := json.Unmarshal(res.Payload, out); err != nil {
				return fmt.Errorf("bridge: decoding %s payload: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		b.unregister(id)
		return ctx.Err()
	}
}

func (b *Bridge) unregister(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

// readLoop consumes frames until the connection drops, routing responses
// to waiting callers and events to the lifecycle handlers.
func (b *Bridge) readLoop(handlers EventHandlers) {
	for {
		var f frame
		b.mu.Lock()
		conn := b.conn
		b.mu.Unlock()
		if conn == nil {
			return
		}

		if err := conn.ReadJSON(&f); err != nil {
			b.failPending(err)

			b.mu.Lock()
			closed := b.closed
			b.closed = true
			b.mu.Unlock()

			if !closed {
				b.log.Warn().Err(err).Msg("bridge connection lost")
				if handlers.Disconnected != nil {
					handlers.Disconnected(err.Error())
				}
			}
			return
		}

		switch f.Type {
		case frameTypeResponse:
			b.mu.Lock()
			ch, ok := b.pending[f.ID]
			delete(b.pending, f.ID)
			b.mu.Unlock()
			if ok {
				ch <- f
			}
		case frameTypeEvent:
			b.dispatchEvent(f, handlers)
		}
	}
}

func (b *Bridge) dispatchEvent(f frame, handlers EventHandlers) {
	switch f.Event {
	case "qr":
		var evt qrEvent
		if err := json.Unmarshal(f.Payload, &evt); err != nil {
			b.log.Warn().Err(err).Msg("malformed qr event")
			return
		}
		if handlers.QR != nil {
			handlers.QR(evt.Code)
		}
	case "authenticated":
		var evt authEvent
		if err := json.Unmarshal(f.Payload, &evt); err != nil {
			b.log.Warn().Err(err).Msg("malformed authenticated event")
			return
		}
		if handlers.Authenticated != nil {
			handlers.Authenticated(evt.Session)
		}
	case "ready":
		if handlers.Ready != nil {
			handlers.Ready()
		}
	case "disconnected":
		var evt disconnectEvent
		_ = json.Unmarshal(f.Payload, &evt)
		if handlers.Disconnected != nil {
			handlers.Disconnected(evt.Reason)
		}
	case "message":
		var evt messageEvent
		if err := json.Unmarshal(f.Payload, &evt); err != nil {
			b.log.Warn().Err(err).Msg("malformed message event")
			return
		}
		if handlers.Message != nil {
			handlers.Message(evt.From, evt.Body)
		}
	default:
		b.log.Debug().Str("event", f.Event).Msg("ignoring unknown bridge event")
	}
}

// failPending unblocks all waiting callers with an error response.
func (b *Bridge) failPending(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.pending {
		ch <- frame{
			Type:  frameTypeResponse,
			ID:    id,
			Error: &errorShape{Code: "connection_lost", Message: err.Error()},
		}
		delete(b.pending, id)
	}
}
