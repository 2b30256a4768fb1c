package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateItemRequest payload for new catalog entries.
type CreateItemRequest struct {
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	Available *bool    `json:"available"`
}

// UpdateItemRequest payload for partial item updates.
type UpdateItemRequest struct {
	Name      *string  `json:"name,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Available *bool    `json:"available,omitempty"`
}

// ItemResponse wire form for items.
type ItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemPageResponse paginated catalog listing.
type ItemPageResponse struct {
	Items       []ItemResponse `json:"items"`
	TotalItems  int64          `json:"totalItems"`
	TotalPages  int64          `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// ValidateOrderRequest payload listing item ids to order.
type ValidateOrderRequest struct {
	Items []string `json:"items"`
}

// NewItemResponse maps a domain item onto the wire form.
func NewItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
