package domain

import "time"

// CartItem is one line in an abandoned cart.
type CartItem struct {
	Product  string  `json:"product"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is a shopping cart a customer left behind without checking out.
type Cart struct {
	ID            string     `json:"id"`
	Customer      string     `json:"customer"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Items         []CartItem `json:"items"`
	Total         float64    `json:"total"`
	AbandonedAt   time.Time  `json:"abandoned_at"`
	Recovered     bool       `json:"recovered"`
	DaysAbandoned int        `json:"days_abandoned,omitempty"`
}

// OrderStatus values match what the dashboard displays.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pendente"
	OrderCompleted OrderStatus = "Concluída"
	OrderCancelled OrderStatus = "Cancelada"
)

// Order is a completed or pending sale.
type Order struct {
	ID       string      `json:"id"`
	Customer string      `json:"customer"`
	Product  string      `json:"product"`
	Price    float64     `json:"price"`
	Date     time.Time   `json:"date"`
	Status   OrderStatus `json:"status"`
}

// ProductSales aggregates orders for one product.
type ProductSales struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// Stats is the dashboard summary block.
type Stats struct {
	TotalConversations int            `json:"total_conversations"`
	TotalSales         int            `json:"total_sales"`
	CartRecovery       int            `json:"cart_recovery"`
	ResponseTimeAvg    float64        `json:"response_time_avg"`
	ConversionRate     float64        `json:"conversion_rate"`
	TotalRevenue       float64        `json:"total_revenue"`
	RevenueGrowth      float64        `json:"revenue_growth"`
	ProductsSold       []ProductSales `json:"products_sold"`
}
