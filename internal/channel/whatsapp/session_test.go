package whatsapp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfcastro/juniorbot/internal/logging"
)

type sentMsg struct {
	To   string
	Body string
	At   time.Time
}

// fakeNetwork is a scriptable Network double shared by the package tests.
type fakeNetwork struct {
	mu         sync.Mutex
	handlers   EventHandlers
	startCreds []byte
	startErr   error
	started    bool

	sendErr   map[string]error
	sent      []sentMsg
	sendCalls int

	contacts map[string]string
	chats    map[string]ChatInfo
	chatErr  error

	createdGroup string
	createErr    error
}

func (f *fakeNetwork) Start(_ context.Context, creds []byte, handlers EventHandlers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	f.startCreds = creds
	f.handlers = handlers
	return nil
}

func (f *fakeNetwork) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	return nil
}

func (f *fakeNetwork) SendMessage(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if err, ok := f.sendErr[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMsg{To: to, Body: body, At: time.Now()})
	return nil
}

func (f *fakeNetwork) ContactName(_ context.Context, addr string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.contacts[addr]
	if !ok {
		return "", errors.New("contact not found")
	}
	return name, nil
}

func (f *fakeNetwork) ChatInfo(_ context.Context, addr string) (ChatInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chatErr != nil {
		return ChatInfo{}, f.chatErr
	}
	chat, ok := f.chats[addr]
	if !ok {
		return ChatInfo{}, errors.New("chat not found")
	}
	return chat, nil
}

func (f *fakeNetwork) CreateGroup(_ context.Context, name string, participants []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdGroup = name
	return "12036302@g.us", nil
}

func (f *fakeNetwork) sentMessages() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMsg, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeCreds is an in-memory CredentialStore.
type fakeCreds struct {
	mu      sync.Mutex
	blob    []byte
	saveErr error
	saved   int
}

func (c *fakeCreds) Load() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blob, nil
}

func (c *fakeCreds) Save(blob []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.blob = blob
	c.saved++
	return nil
}

func testSession(t *testing.T, net *fakeNetwork, creds *fakeCreds) *Session {
	t.Helper()
	if net == nil {
		net = &fakeNetwork{}
	}
	if creds == nil {
		creds = &fakeCreds{}
	}
	return NewSession(net, creds, logging.New(nil, "silent"))
}

// makeReady walks a session through the full handshake.
func makeReady(t *testing.T, sess *Session, net *fakeNetwork) {
	t.Helper()
	require.NoError(t, sess.Initialize(context.Background()))
	net.handlers.Authenticated([]byte(`{"tok":"x"}`))
	net.handlers.Ready()
	require.True(t, sess.Ready())
}

func TestSession_InitialState(t *testing.T) {
	sess := testSession(t, nil, nil)
	assert.Equal(t, StateUninitialized, sess.State())
	assert.False(t, sess.Ready())
}

func TestSession_Initialize(t *testing.T) {
	net := &fakeNetwork{}
	sess := testSession(t, net, nil)

	require.NoError(t, sess.Initialize(context.Background()))
	assert.Equal(t, StateAwaitingScan, sess.State())
	assert.True(t, net.started)
	assert.Nil(t, net.startCreds, "no saved credentials to restore")
}

func TestSession_Initialize_RestoresCredentials(t *testing.T) {
	net := &fakeNetwork{}
	creds := &fakeCreds{blob: []byte(`{"tok":"saved"}`)}
	sess := testSession(t, net, creds)

	require.NoError(t, sess.Initialize(context.Background()))
	assert.Equal(t, []byte(`{"tok":"saved"}`), net.startCreds)
}

func TestSession_Initialize_Twice(t *testing.T) {
	net := &fakeNetwork{}
	sess := testSession(t, net, nil)

	require.NoError(t, sess.Initialize(context.Background()))
	err := sess.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "awaiting_scan")
}

func TestSession_Initialize_TransportError(t *testing.T) {
	net := &fakeNetwork{startErr: errors.New("dial refused")}
	sess := testSession(t, net, nil)

	err := sess.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, sess.State())
}

func TestSession_QRChallenge(t *testing.T) {
	net := &fakeNetwork{}
	sess := testSession(t, net, nil)

	var events []Event
	sess.Subscribe(func(evt Event) { events = append(events, evt) })

	require.NoError(t, sess.Initialize(context.Background()))
	net.handlers.QR("2@abc123")

	// The challenge is exposed but does not advance the state.
	assert.Equal(t, "2@abc123", sess.QR())
	assert.Equal(t, StateAwaitingScan, sess.State())
	require.Len(t, events, 1)
	assert.Equal(t, EventQR, events[0].Type)
	assert.Equal(t, "2@abc123", events[0].QR)
}

func TestSession_Authenticated_PersistsCredentials(t *testing.T) {
	net := &fakeNetwork{}
	creds := &fakeCreds{}
	sess := testSession(t, net, creds)

	require.NoError(t, sess.Initialize(context.Background()))
	net.handlers.QR("2@abc123")
	net.handlers.Authenticated([]byte(`{"tok":"fresh"}`))

	assert.Equal(t, StateAuthenticated, sess.State())
	assert.False(t, sess.Ready(), "authenticated is not ready yet")
	assert.Empty(t, sess.QR(), "challenge cleared after authentication")
	assert.Equal(t, []byte(`{"tok":"fresh"}`), creds.blob)
}

func TestSession_Authenticated_PersistFailureNonFatal(t *testing.T) {
	net := &fakeNetwork{}
	creds := &fakeCreds{saveErr: errors.New("disk full")}
	sess := testSession(t, net, creds)

	require.NoError(t, sess.Initialize(context.Background()))
	net.handlers.Authenticated([]byte(`{"tok":"x"}`))
	net.handlers.Ready()

	// Session stays usable even though the blob was not saved.
	assert.Equal(t, StateReady, sess.State())
	assert.True(t, sess.Ready())
}

func TestSession_ReadyAndDisconnect(t *testing.T) {
	net := &fakeNetwork{}
	sess := testSession(t, net, nil)

	var events []Event
	sess.Subscribe(func(evt Event) { events = append(events, evt) })

	makeReady(t, sess, net)
	assert.Equal(t, StateReady, sess.State())

	net.handlers.Disconnected("connection reset")
	assert.Equal(t, StateDisconnected, sess.State())
	assert.False(t, sess.Ready())
	assert.Equal(t, "connection reset", sess.Status().Error)

	// Reconnection requires a fresh Initialize, which is permitted now.
	require.NoError(t, sess.Initialize(context.Background()))
	assert.Equal(t, StateAwaitingScan, sess.State())

	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	assert.Equal(t, []EventType{EventAuthenticated, EventReady, EventDisconnected}, types)
}

func TestSession_SubscribeCancel(t *testing.T) {
	net := &fakeNetwork{}
	sess := testSession(t, net, nil)

	calls := 0
	cancel := sess.Subscribe(func(Event) { calls++ })

	require.NoError(t, sess.Initialize(context.Background()))
	net.handlers.QR("a")
	cancel()
	net.handlers.QR("b")

	assert.Equal(t, 1, calls)
}

func TestSession_OnMessage(t *testing.T) {
	net := &fakeNetwork{}
	sess := testSession(t, net, nil)

	var gotFrom, gotBody string
	sess.OnMessage(func(from, body string) {
		gotFrom, gotBody = from, body
	})

	require.NoError(t, sess.Initialize(context.Background()))
	net.handlers.Message("5511999990000@c.us", "oi")

	assert.Equal(t, "5511999990000@c.us", gotFrom)
	assert.Equal(t, "oi", gotBody)
}

func TestSession_ContactName_RequiresReady(t *testing.T) {
	net := &fakeNetwork{contacts: map[string]string{"55@c.us": "Maria"}}
	sess := testSession(t, net, nil)

	_, err := sess.ContactName(context.Background(), "55@c.us")
	assert.ErrorIs(t, err, ErrNotReady)

	makeReady(t, sess, net)
	name, err := sess.ContactName(context.Background(), "55@c.us")
	require.NoError(t, err)
	assert.Equal(t, "Maria", name)
}
