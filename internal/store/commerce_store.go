package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfcastro/juniorbot/internal/domain"
)

// CommerceStore persists carts and orders and feeds the dashboard stats.
type CommerceStore interface {
	// SaveCart inserts a cart, assigning ID and AbandonedAt when unset.
	SaveCart(cart *domain.Cart) error

	// GetCart returns a cart by ID, or nil.
	GetCart(id string) (*domain.Cart, error)

	// ListAbandonedCarts returns unrecovered carts, newest first, with
	// DaysAbandoned computed.
	ListAbandonedCarts() ([]domain.Cart, error)

	// MarkCartRecovered flags a cart as recovered.
	MarkCartRecovered(id string) error

	// SaveOrder inserts an order, assigning ID and Date when unset.
	SaveOrder(order *domain.Order) error

	// ListOrders returns all orders, newest first.
	ListOrders() ([]domain.Order, error)

	// SalesStats aggregates order and cart figures: total sales, recovered
	// carts, total revenue, and the top five products sold.
	SalesStats() (domain.Stats, error)
}

// SQLiteCommerceStore implements CommerceStore backed by SQLite.
type SQLiteCommerceStore struct {
	db *DB
}

// NewSQLiteCommerceStore creates a commerce store using the given database.
func NewSQLiteCommerceStore(db *DB) *SQLiteCommerceStore {
	return &SQLiteCommerceStore{db: db}
}

func (s *SQLiteCommerceStore) SaveCart(cart *domain.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.AbandonedAt.IsZero() {
		cart.AbandonedAt = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO carts (id, customer, email, phone, total, abandoned_at, recovered)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cart.ID, cart.Customer, cart.Email, cart.Phone, cart.Total,
		cart.AbandonedAt.Format(timeLayout), cart.Recovered,
	)
	if err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}

	for _, item := range cart.Items {
		_, err := s.db.sql.Exec(
			`INSERT INTO cart_items (cart_id, product, price, quantity)
			 VALUES (?, ?, ?, ?)`,
			cart.ID, item.Product, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("saving cart item: %w", err)
		}
	}
	return nil
}

func (s *SQLiteCommerceStore) GetCart(id string) (*domain.Cart, error) {
	var cart domain.Cart
	var abandonedAt string

	err := s.db.sql.QueryRow(
		`SELECT id, customer, email, phone, total, abandoned_at, recovered
		 FROM carts WHERE id = ?`, id,
	).Scan(&cart.ID, &cart.Customer, &cart.Email, &cart.Phone, &cart.Total, &abandonedAt, &cart.Recovered)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	cart.AbandonedAt, _ = time.Parse(timeLayout, abandonedAt)
	cart.Items, err = s.loadItems(cart.ID)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *SQLiteCommerceStore) ListAbandonedCarts() ([]domain.Cart, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, customer, email, phone, total, abandoned_at, recovered
		 FROM carts WHERE recovered = 0 ORDER BY abandoned_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing abandoned carts: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var carts []domain.Cart
	for rows.Next() {
		var cart domain.Cart
		var abandonedAt string
		if err := rows.Scan(&cart.ID, &cart.Customer, &cart.Email, &cart.Phone,
			&cart.Total, &abandonedAt, &cart.Recovered); err != nil {
			return nil, fmt.Errorf("scanning cart: %w", err)
		}
		cart.AbandonedAt, _ = time.Parse(timeLayout, abandonedAt)
		cart.DaysAbandoned = int(now.Sub(cart.AbandonedAt).Hours() / 24)
		carts = append(carts, cart)
	}

	for i := range carts {
		carts[i].Items, err = s.loadItems(carts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return carts, rows.Err()
}

func (s *SQLiteCommerceStore) MarkCartRecovered(id string) error {
	res, err := s.db.sql.Exec(`UPDATE carts SET recovered = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking cart recovered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart %s not found", id)
	}
	return nil
}

func (s *SQLiteCommerceStore) SaveOrder(order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Date.IsZero() {
		order.Date = time.Now()
	}
	if order.Status == "" {
		order.Status = domain.OrderPending
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO orders (id, customer, product, price, date, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.Customer, order.Product, order.Price,
		order.Date.Format(timeLayout), order.Status,
	)
	if err != nil {
		return fmt.Errorf("saving order: %w", err)
	}
	return nil
}

func (s *SQLiteCommerceStore) ListOrders() ([]domain.Order, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, customer, product, price, date, status
		 FROM orders ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		var date string
		if err := rows.Scan(&order.ID, &order.Customer, &order.Product,
			&order.Price, &date, &order.Status); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		order.Date, _ = time.Parse(timeLayout, date)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *SQLiteCommerceStore) SalesStats() (domain.Stats, error) {
	var stats domain.Stats

	err := s.db.sql.QueryRow(`SELECT COUNT(*), COALESCE(SUM(price), 0) FROM orders`).
		Scan(&stats.TotalSales, &stats.TotalRevenue)
	if err != nil {
		return stats, fmt.Errorf("aggregating orders: %w", err)
	}

	err = s.db.sql.QueryRow(`SELECT COUNT(*) FROM carts WHERE recovered = 1`).
		Scan(&stats.CartRecovery)
	if err != nil {
		return stats, fmt.Errorf("counting recovered carts: %w", err)
	}

	rows, err := s.db.sql.Query(
		`SELECT product, COUNT(*), SUM(price)
		 FROM orders GROUP BY product ORDER BY COUNT(*) DESC LIMIT 5`,
	)
	if err != nil {
		return stats, fmt.Errorf("aggregating products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ProductSales
		if err := rows.Scan(&p.Product, &p.Quantity, &p.Total); err != nil {
			return stats, fmt.Errorf("scanning product sales: %w", err)
		}
		stats.ProductsSold = append(stats.ProductsSold, p)
	}
	return stats, rows.Err()
}

func (s *SQLiteCommerceStore) loadItems(cartID string) ([]domain.CartItem, error) {
	rows, err := s.db.sql.Query(
		`SELECT product, price, quantity FROM cart_items WHERE cart_id = ? ORDER BY id`, cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.Product, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
