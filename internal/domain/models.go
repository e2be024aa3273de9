package domain

import "time"

// All monetary amounts are integer paise (1/100 rupee).
// The default credit line assigned to a freshly registered dealer.
const DefaultCreditLimitPaise int64 = 10_000_000 // ₹100,000

// MaxCartQuantity bounds a single cart line. The stores clamp merged rows
// to it, which keeps line subtotals well away from int64 overflow.
const MaxCartQuantity = 10_000

type Dealer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name"`
	Address      string    `json:"address"`
	GSTNumber    string    `json:"gst_number,omitempty"`
	CreditLimit  int64     `json:"credit_limit"`
	Outstanding  int64     `json:"outstanding_balance"`
	AuthToken    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d *Dealer) AvailableCredit() int64 {
	return d.CreditLimit - d.Outstanding
}

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Grade          string            `json:"grade"`
	Packaging      string            `json:"packaging"`
	Price          int64             `json:"price"` // paise per package
	Stock          int               `json:"stock"`
	ImageURL       string            `json:"image_url,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// CartItem rows are unique per (dealer, product); adding the same product
// again increments the existing row.
type CartItem struct {
	ID        string    `json:"id"`
	DealerID  string    `json:"dealer_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// CartLine joins a cart row to its product at the current catalog price.
type CartLine struct {
	Item     CartItem `json:"item"`
	Product  Product  `json:"product"`
	Subtotal int64    `json:"subtotal"`
}

// OrderItem is a snapshot taken at order time; later catalog price changes
// do not touch it.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Subtotal    int64  `json:"subtotal"`
}

type Order struct {
	ID              string        `json:"id"`
	OrderNumber     string        `json:"order_number"`
	DealerID        string        `json:"dealer_id"`
	Items           []OrderItem   `json:"items"`
	TotalAmount     int64         `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	OrderStatus     OrderStatus   `json:"order_status"`
	DeliveryAddress string        `json:"delivery_address"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type DashboardStats struct {
	TotalOrders     int   `json:"total_orders"`
	PendingOrders   int   `json:"pending_orders"`
	DeliveredOrders int   `json:"delivered_orders"`
	TotalSpent      int64 `json:"total_spent"`
	CreditAvailable int64 `json:"credit_available"`
	Outstanding     int64 `json:"outstanding_balance"`
}
