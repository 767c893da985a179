package readmodel

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderShipped  OrderStatus = "shipped"
	OrderCanceled OrderStatus = "canceled"
)

// OrderStatuses lists the statuses an admin can move an order between
var OrderStatuses = []OrderStatus{OrderPending, OrderShipped, OrderCanceled}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderCanceled:
		return true
	}
	return false
}

// Label returns the capitalised form shown in lists ("Pending")
func (s OrderStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Profile is the logged in administrator
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ProductReadModel is the read model for products
type ProductReadModel struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// CartItemReadModel represents a line in an order's cart
type CartItemReadModel struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID          string              `json:"_id"`
	OrderNumber string              `json:"orderNumber"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Address     string              `json:"address"`
	Cart        []CartItemReadModel `json:"cart"`
	TotalPrice  float64             `json:"totalPrice"`
	Status      OrderStatus         `json:"orderStatus"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// OrderPage is one server-side page of orders
type OrderPage struct {
	Orders      []OrderReadModel `json:"orders"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// MessageReadModel is a customer message sent through the storefront
type MessageReadModel struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessagePage is one server-side page of messages
type MessagePage struct {
	Messages    []MessageReadModel `json:"messages"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
}

// PayoutAccount is the bank account revenue is paid out to
type PayoutAccount struct {
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
}

// RevenuePoint is the revenue total for one calendar day ("2006-01-02")
type RevenuePoint struct {
	Date         string  `json:"_id"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// ProductOrderCount is the number of orders containing a product
type ProductOrderCount struct {
	Product    string `json:"_id"`
	OrderCount int    `json:"orderCount"`
}

// Stats is the dashboard aggregate computed by the API
type Stats struct {
	TotalOrders      int                 `json:"totalOrders"`
	PendingOrders    int                 `json:"pendingOrders"`
	ShippedOrders    int                 `json:"shippedOrders"`
	CanceledOrders   int                 `json:"canceledOrders"`
	TotalProducts    int                 `json:"totalProducts"`
	TotalRevenue     float64             `json:"totalRevenue"`
	RevenueOverTime  []RevenuePoint      `json:"revenueOverTime"`
	OrdersPerProduct []ProductOrderCount `json:"ordersPerProduct"`
}
