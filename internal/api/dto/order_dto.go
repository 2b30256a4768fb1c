package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateOrderRequest payload for placing orders.
type CreateOrderRequest struct {
	Title  string   `json:"title"`
	Amount *float64 `json:"amount"`
	Items  []string `json:"items"`
}

// UpdateOrderRequest payload for partial order updates.
type UpdateOrderRequest struct {
	Title  *string             `json:"title,omitempty"`
	Amount *float64            `json:"amount,omitempty"`
	Status *domain.OrderStatus `json:"status,omitempty"`
	Items  []string            `json:"items,omitempty"`
}

// OrderResponse wire form for orders.
type OrderResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Amount    float64            `json:"amount"`
	UserID    string             `json:"userId"`
	Status    domain.OrderStatus `json:"status"`
	Items     []string           `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewOrderResponse maps a domain order onto the wire form.
func NewOrderResponse(order *domain.Order) OrderResponse {
	items := order.ItemIDs
	if items == nil {
		items = []string{}
	}
	return OrderResponse{
		ID:        order.ID,
		Title:     order.Title,
		Amount:    order.Amount,
		UserID:    order.UserID,
		Status:    order.Status,
		Items:     items,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
