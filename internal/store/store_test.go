package store

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfcastro/juniorbot/internal/domain"
	"github.com/mfcastro/juniorbot/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.New(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsApplied(t *testing.T) {
	db := testDB(t)

	for _, m := range migrations {
		applied, err := db.isMigrationApplied(m.Version)
		require.NoError(t, err)
		assert.True(t, applied, "migration %d not applied", m.Version)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.migrate())
}

func TestConversationCreateAndFind(t *testing.T) {
	s := NewSQLiteConversationStore(testDB(t))

	conv := &domain.Conversation{Customer: "Maria", Phone: "5511999990000"}
	require.NoError(t, s.Create(conv))
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, domain.StatusActive, conv.Status)

	found, err := s.FindByPhone("5511999990000")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, conv.ID, found.ID)
	assert.Equal(t, "Maria", found.Customer)

	missing, err := s.FindByPhone("5511000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestConversationPhoneUnique(t *testing.T) {
	s := NewSQLiteConversationStore(testDB(t))

	require.NoError(t, s.Create(&domain.Conversation{Customer: "Maria", Phone: "5511999990000"}))
	err := s.Create(&domain.Conversation{Customer: "Maria", Phone: "5511999990000"})
	assert.Error(t, err)
}

func TestConversationAppendOrder(t *testing.T) {
	s := NewSQLiteConversationStore(testDB(t))

	conv := &domain.Conversation{
		Customer: "João",
		Phone:    "5511888880000",
		Messages: []domain.Message{
			{Sender: domain.SenderBot, Text: "Olá! Bem-vindo."},
		},
	}
	require.NoError(t, s.Create(conv))

	require.NoError(t, s.AppendMessage(conv.ID, domain.Message{Sender: domain.SenderCustomer, Text: "Qual o preço?"}))
	require.NoError(t, s.AppendMessage(conv.ID, domain.Message{Sender: domain.SenderBot, Text: "Temos opções a partir de R$ 99."}))

	got, err := s.Get(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "Olá! Bem-vindo.", got.Messages[0].Text)
	assert.Equal(t, "Qual o preço?", got.Messages[1].Text)
	assert.Equal(t, domain.SenderBot, got.Messages[2].Sender)
}

func TestConversationSetStatus(t *testing.T) {
	s := NewSQLiteConversationStore(testDB(t))

	conv := &domain.Conversation{Customer: "Ana", Phone: "5511777770000"}
	require.NoError(t, s.Create(conv))
	require.NoError(t, s.SetStatus(conv.ID, domain.StatusClosed))

	got, err := s.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, got.Status)

	assert.Error(t, s.SetStatus("missing", domain.StatusClosed))
}

func TestConversationListAndCount(t *testing.T) {
	s := NewSQLiteConversationStore(testDB(t))

	older := &domain.Conversation{Customer: "A", Phone: "1", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.Conversation{Customer: "B", Phone: "2", CreatedAt: time.Now()}
	require.NoError(t, s.Create(older))
	require.NoError(t, s.Create(newer))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Customer)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCartLifecycle(t *testing.T) {
	s := NewSQLiteCommerceStore(testDB(t))

	cart := &domain.Cart{
		Customer:    "Maria",
		Email:       "maria@example.com",
		Phone:       "5511999990000",
		Total:       149.90,
		AbandonedAt: time.Now().Add(-72 * time.Hour),
		Items: []domain.CartItem{
			{Product: "Tênis", Price: 149.90, Quantity: 1},
		},
	}
	require.NoError(t, s.SaveCart(cart))
	assert.NotEmpty(t, cart.ID)

	abandoned, err := s.ListAbandonedCarts()
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, 3, abandoned[0].DaysAbandoned)
	require.Len(t, abandoned[0].Items, 1)
	assert.Equal(t, "Tênis", abandoned[0].Items[0].Product)

	require.NoError(t, s.MarkCartRecovered(cart.ID))

	abandoned, err = s.ListAbandonedCarts()
	require.NoError(t, err)
	assert.Empty(t, abandoned)

	got, err := s.GetCart(cart.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Recovered)

	assert.Error(t, s.MarkCartRecovered("missing"))
}

func TestOrdersAndStats(t *testing.T) {
	s := NewSQLiteCommerceStore(testDB(t))

	orders := []domain.Order{
		{Customer: "A", Product: "Camiseta", Price: 49.90, Status: domain.OrderCompleted},
		{Customer: "B", Product: "Camiseta", Price: 49.90, Status: domain.OrderCompleted},
		{Customer: "C", Product: "Tênis", Price: 199.90, Status: domain.OrderPending},
	}
	for i := range orders {
		require.NoError(t, s.SaveOrder(&orders[i]))
	}

	require.NoError(t, s.SaveCart(&domain.Cart{Customer: "D", Phone: "1", Recovered: false}))
	recovered := &domain.Cart{Customer: "E", Phone: "2"}
	require.NoError(t, s.SaveCart(recovered))
	require.NoError(t, s.MarkCartRecovered(recovered.ID))

	listed, err := s.ListOrders()
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	stats, err := s.SalesStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSales)
	assert.Equal(t, 1, stats.CartRecovery)
	assert.InDelta(t, 299.70, stats.TotalRevenue, 0.001)
	require.NotEmpty(t, stats.ProductsSold)
	assert.Equal(t, "Camiseta", stats.ProductsSold[0].Product)
	assert.Equal(t, 2, stats.ProductsSold[0].Quantity)
}

func TestMemoryStoreConversations(t *testing.T) {
	s := NewMemoryStore()

	conv := &domain.Conversation{Customer: "Maria", Phone: "5511999990000"}
	require.NoError(t, s.Create(conv))
	assert.Error(t, s.Create(&domain.Conversation{Customer: "Maria", Phone: "5511999990000"}))

	require.NoError(t, s.AppendMessage(conv.ID, domain.Message{Sender: domain.SenderCustomer, Text: "Oi"}))
	got, err := s.Get(conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)

	// Mutating the returned copy must not touch the stored record.
	got.Messages[0].Text = "changed"
	again, err := s.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oi", again.Messages[0].Text)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreCommerce(t *testing.T) {
	s := NewMemoryStore()

	cart := &domain.Cart{Customer: "Maria", Phone: "1", AbandonedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, s.SaveCart(cart))

	abandoned, err := s.ListAbandonedCarts()
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, 2, abandoned[0].DaysAbandoned)

	require.NoError(t, s.SaveOrder(&domain.Order{Customer: "A", Product: "Camiseta", Price: 10}))
	require.NoError(t, s.SaveOrder(&domain.Order{Customer: "B", Product: "Camiseta", Price: 10}))

	stats, err := s.SalesStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSales)
	assert.InDelta(t, 20, stats.TotalRevenue, 0.001)
	require.Len(t, stats.ProductsSold, 1)
	assert.Equal(t, 2, stats.ProductsSold[0].Quantity)
}
