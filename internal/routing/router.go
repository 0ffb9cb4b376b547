// Package routing connects inbound WhatsApp messages to the conversation
// store, the responder engine, and the outbound channel.
package routing

import (
	"context"
	"sync"

	"github.com/mfcastro/juniorbot/internal/channel/whatsapp"
	"github.com/mfcastro/juniorbot/internal/domain"
	"github.com/mfcastro/juniorbot/internal/logging"
	"github.com/mfcastro/juniorbot/internal/responder"
	"github.com/mfcastro/juniorbot/internal/store"
)

// Sender delivers a single outbound message.
type Sender interface {
	SendOne(ctx context.Context, to, body string) error
}

// ContactResolver looks up the display name for a WhatsApp address.
type ContactResolver interface {
	ContactName(ctx context.Context, addr string) (string, error)
}

// Router runs the inbound pipeline: persist the customer turn, generate a
// reply, persist it, and send it back out.
type Router struct {
	conversations store.ConversationStore
	engine        responder.Engine
	sender        Sender
	contacts      ContactResolver
	log           *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRouter creates a router over the given collaborators.
func NewRouter(conversations store.ConversationStore, engine responder.Engine, sender Sender, contacts ContactResolver, log *logging.Logger) *Router {
	return &Router{
		conversations: conversations,
		engine:        engine,
		sender:        sender,
		contacts:      contacts,
		log:           log.Sub("routing"),
		locks:         make(map[string]*sync.Mutex),
	}
}

// Wire registers the router as the session's inbound message handler.
// Each message is processed on its own goroutine so the transport's read
// loop is never blocked by storage or responder latency.
func (r *Router) Wire(sess *whatsapp.Session) {
	sess.OnMessage(func(from, body string) {
		go r.HandleInbound(context.Background(), from, body)
	})
}

// HandleInbound processes one inbound message end to end. Group chats and
// empty bodies are ignored. Messages from the same phone are serialized so
// find-or-create never races with itself.
func (r *Router) HandleInbound(ctx context.Context, from, body string) {
	if !whatsapp.IsUserAddress(from) || body == "" {
		return
	}
	phone := whatsapp.StripUser(from)

	lock := r.phoneLock(phone)
	lock.Lock()
	defer lock.Unlock()

	conv, err := r.conversations.FindByPhone(phone)
	if err != nil {
		r.log.Error().Err(err).Str("phone", phone).Msg("conversation lookup failed")
		return
	}
	if conv == nil {
		name, err := r.contacts.ContactName(ctx, from)
		if err != nil || name == "" {
			name = phone
		}
		conv = &domain.Conversation{Customer: name, Phone: phone}
		if err := r.conversations.Create(conv); err != nil {
			r.log.Error().Err(err).Str("phone", phone).Msg("conversation create failed")
			return
		}
		r.log.Info().Str("phone", phone).Str("customer", name).Msg("new conversation")
	}

	if err := r.conversations.AppendMessage(conv.ID, domain.Message{
		Sender: domain.SenderCustomer,
		Text:   body,
	}); err != nil {
		r.log.Error().Err(err).Str("conversation", conv.ID).Msg("persisting customer message failed")
		return
	}

	reply, err := r.engine.Reply(ctx, body, phone)
	if err != nil {
		r.log.Error().Err(err).Str("conversation", conv.ID).Msg("responder failed")
		return
	}

	if err := r.conversations.AppendMessage(conv.ID, domain.Message{
		Sender: domain.SenderBot,
		Text:   reply,
	}); err != nil {
		r.log.Error().Err(err).Str("conversation", conv.ID).Msg("persisting bot message failed")
		return
	}

	if err := r.sender.SendOne(ctx, from, reply); err != nil {
		// The turn is already recorded; delivery failure is logged only.
		r.log.Error().Err(err).Str("to", from).Msg("sending reply failed")
	}
}

// phoneLock returns the mutex serializing inbound handling for one phone.
// Entries are never evicted; the map is bounded by the number of distinct
// contacts the process has seen, a few bytes each.
func (r *Router) phoneLock(phone string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[phone]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[phone] = lock
	}
	return lock
}
