package routing

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfcastro/juniorbot/internal/domain"
	"github.com/mfcastro/juniorbot/internal/logging"
	"github.com/mfcastro/juniorbot/internal/responder"
	"github.com/mfcastro/juniorbot/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

type sentMessage struct {
	to, body string
}

func (f *fakeSender) SendOne(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}

type fakeContacts struct {
	names map[string]string
	err   error
}

func (f *fakeContacts) ContactName(_ context.Context, addr string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.names[addr], nil
}

type failingStore struct {
	*store.MemoryStore
	failAppend bool
}

func (f *failingStore) AppendMessage(conversationID string, msg domain.Message) error {
	if f.failAppend {
		return errors.New("disk full")
	}
	return f.MemoryStore.AppendMessage(conversationID, msg)
}

type recordingEngine struct {
	contacts []string
}

func (e *recordingEngine) Reply(_ context.Context, _, contact string) (string, error) {
	e.contacts = append(e.contacts, contact)
	return "ok", nil
}

func testRouter(t *testing.T, conversations store.ConversationStore, sender *fakeSender, contacts *fakeContacts) *Router {
	t.Helper()
	if contacts == nil {
		contacts = &fakeContacts{}
	}
	log := logging.New(io.Discard, "error")
	return NewRouter(conversations, responder.NewKeyword(), sender, contacts, log)
}

func TestHandleInbound_NewContact(t *testing.T) {
	mem := store.NewMemoryStore()
	sender := &fakeSender{}
	contacts := &fakeContacts{names: map[string]string{"5511999990000@c.us": "Maria"}}
	r := testRouter(t, mem, sender, contacts)

	r.HandleInbound(context.Background(), "5511999990000@c.us", "Qual o preço?")

	conv, err := mem.FindByPhone("5511999990000")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "Maria", conv.Customer)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.SenderCustomer, conv.Messages[0].Sender)
	assert.Equal(t, "Qual o preço?", conv.Messages[0].Text)
	assert.Equal(t, domain.SenderBot, conv.Messages[1].Sender)
	assert.Contains(t, conv.Messages[1].Text, "preço")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "5511999990000@c.us", sender.sent[0].to)
	assert.Equal(t, conv.Messages[1].Text, sender.sent[0].body)
}

func TestHandleInbound_EngineReceivesPhoneNotDisplayName(t *testing.T) {
	mem := store.NewMemoryStore()
	engine := &recordingEngine{}
	contacts := &fakeContacts{names: map[string]string{"5511999990000@c.us": "Maria"}}
	log := logging.New(io.Discard, "error")
	r := NewRouter(mem, engine, &fakeSender{}, contacts, log)

	r.HandleInbound(context.Background(), "5511999990000@c.us", "oi")

	// The contact key must stay stable across display-name changes.
	require.Len(t, engine.contacts, 1)
	assert.Equal(t, "5511999990000", engine.contacts[0])
}

func TestHandleInbound_ExistingContactReusesConversation(t *testing.T) {
	mem := store.NewMemoryStore()
	sender := &fakeSender{}
	r := testRouter(t, mem, sender, nil)

	r.HandleInbound(context.Background(), "5511999990000@c.us", "oi")
	r.HandleInbound(context.Background(), "5511999990000@c.us", "qual o prazo de entrega?")

	list, err := mem.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Messages, 4)
}

func TestHandleInbound_ContactLookupFallsBackToPhone(t *testing.T) {
	mem := store.NewMemoryStore()
	sender := &fakeSender{}
	contacts := &fakeContacts{err: errors.New("not ready")}
	r := testRouter(t, mem, sender, contacts)

	r.HandleInbound(context.Background(), "5511999990000@c.us", "oi")

	conv, err := mem.FindByPhone("5511999990000")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "5511999990000", conv.Customer)
}

func TestHandleInbound_IgnoresGroupsAndEmpty(t *testing.T) {
	mem := store.NewMemoryStore()
	sender := &fakeSender{}
	r := testRouter(t, mem, sender, nil)

	r.HandleInbound(context.Background(), "12036302@g.us", "oi pessoal")
	r.HandleInbound(context.Background(), "5511999990000@c.us", "")

	n, err := mem.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sender.sent)
}

func TestHandleInbound_PersistFailureAbortsTurn(t *testing.T) {
	mem := &failingStore{MemoryStore: store.NewMemoryStore(), failAppend: true}
	sender := &fakeSender{}
	r := testRouter(t, mem, sender, nil)

	r.HandleInbound(context.Background(), "5511999990000@c.us", "oi")

	// No reply goes out when the customer turn could not be recorded.
	assert.Empty(t, sender.sent)
}

func TestHandleInbound_SendFailureKeepsTranscript(t *testing.T) {
	mem := store.NewMemoryStore()
	sender := &fakeSender{fail: true}
	r := testRouter(t, mem, sender, nil)

	r.HandleInbound(context.Background(), "5511999990000@c.us", "bom dia")

	conv, err := mem.FindByPhone("5511999990000")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Len(t, conv.Messages, 2)
}
