package domain

import "time"

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether the value is a known status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the aggregate for placed orders. UserID references the owning account.
type Order struct {
	ID        string
	Title     string
	Amount    float64
	UserID    string
	Status    OrderStatus
	ItemIDs   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
