package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfcastro/juniorbot/internal/domain"
)

// MemoryStore keeps conversations, carts, and orders in process memory.
// It backs the "memory" store driver and the test suites.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	byPhone       map[string]string
	carts         map[string]*domain.Cart
	orders        []domain.Order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*domain.Conversation),
		byPhone:       make(map[string]string),
		carts:         make(map[string]*domain.Cart),
	}
}

func (s *MemoryStore) FindByPhone(phone string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPhone[phone]
	if !ok {
		return nil, nil
	}
	return copyConversation(s.conversations[id]), nil
}

func (s *MemoryStore) Create(conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPhone[conv.Phone]; exists {
		return fmt.Errorf("creating conversation for %s: phone already exists", conv.Phone)
	}
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.Status == "" {
		conv.Status = domain.StatusActive
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	for i := range conv.Messages {
		if conv.Messages[i].Timestamp.IsZero() {
			conv.Messages[i].Timestamp = time.Now()
		}
	}

	s.conversations[conv.ID] = copyConversation(conv)
	s.byPhone[conv.Phone] = conv.ID
	return nil
}

func (s *MemoryStore) AppendMessage(conversationID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("appending message to %s: conversation not found", conversationID)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (s *MemoryStore) SetStatus(conversationID string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	conv.Status = status
	return nil
}

func (s *MemoryStore) Get(conversationID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	return copyConversation(conv), nil
}

func (s *MemoryStore) List() ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, *copyConversation(conv))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations), nil
}

func (s *MemoryStore) SaveCart(cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.AbandonedAt.IsZero() {
		cart.AbandonedAt = time.Now()
	}
	stored := *cart
	stored.Items = append([]domain.CartItem(nil), cart.Items...)
	s.carts[cart.ID] = &stored
	return nil
}

func (s *MemoryStore) GetCart(id string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[id]
	if !ok {
		return nil, nil
	}
	out := *cart
	out.Items = append([]domain.CartItem(nil), cart.Items...)
	return &out, nil
}

func (s *MemoryStore) ListAbandonedCarts() ([]domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var out []domain.Cart
	for _, cart := range s.carts {
		if cart.Recovered {
			continue
		}
		c := *cart
		c.Items = append([]domain.CartItem(nil), cart.Items...)
		c.DaysAbandoned = int(now.Sub(c.AbandonedAt).Hours() / 24)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AbandonedAt.After(out[j].AbandonedAt)
	})
	return out, nil
}

func (s *MemoryStore) MarkCartRecovered(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return fmt.Errorf("cart %s not found", id)
	}
	cart.Recovered = true
	return nil
}

func (s *MemoryStore) SaveOrder(order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Date.IsZero() {
		order.Date = time.Now()
	}
	if order.Status == "" {
		order.Status = domain.OrderPending
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *MemoryStore) ListOrders() ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.Order(nil), s.orders...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *MemoryStore) SalesStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.Stats
	stats.TotalSales = len(s.orders)
	byProduct := make(map[string]*domain.ProductSales)
	for _, order := range s.orders {
		stats.TotalRevenue += order.Price
		p, ok := byProduct[order.Product]
		if !ok {
			p = &domain.ProductSales{Product: order.Product}
			byProduct[order.Product] = p
		}
		p.Quantity++
		p.Total += order.Price
	}
	for _, cart := range s.carts {
		if cart.Recovered {
			stats.CartRecovery++
		}
	}

	products := make([]domain.ProductSales, 0, len(byProduct))
	for _, p := range byProduct {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Quantity > products[j].Quantity
	})
	if len(products) > 5 {
		products = products[:5]
	}
	stats.ProductsSold = products
	return stats, nil
}

func copyConversation(conv *domain.Conversation) *domain.Conversation {
	out := *conv
	out.Messages = append([]domain.Message(nil), conv.Messages...)
	return &out
}
