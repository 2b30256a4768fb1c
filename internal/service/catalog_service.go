package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// CatalogService coordinates item workflows.
type CatalogService struct {
	items repository.ItemRepository
}

// ItemCreateInput describes item creation payload.
type ItemCreateInput struct {
	Name      string
	Price     float64
	Available bool
}

// ItemUpdateInput describes a partial item update.
type ItemUpdateInput struct {
	Name      *string
	Price     *float64
	Available *bool
}

// ItemPage is a paginated catalog listing.
type ItemPage struct {
	Items       []domain.Item
	TotalItems  int64
	TotalPages  int64
	CurrentPage int
}

// NewCatalogService constructs the service.
func NewCatalogService(items repository.ItemRepository) *CatalogService {
	return &CatalogService{items: items}
}

// CreateItem adds a catalog entry.
func (s *CatalogService) CreateItem(ctx context.Context, input ItemCreateInput) (*domain.Item, error) {
	item := &domain.Item{
		Name:      strings.TrimSpace(input.Name),
		Price:     input.Price,
		Available: input.Available,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem fetches a single item.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("item", map[string]any{"id": id})
		}
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a partial update.
func (s *CatalogService) UpdateItem(ctx context.Context, id string, input ItemUpdateInput) (*domain.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.Available != nil {
		item.Available = *input.Available
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item, returning the removed entry.
func (s *CatalogService) DeleteItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.Delete(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("item", map[string]any{"id": id})
		}
		return nil, err
	}
	return item, nil
}

// ListItems returns a page of items, optionally capped at maxPrice.
func (s *CatalogService) ListItems(ctx context.Context, page, limit int, maxPrice *float64) (*ItemPage, error) {
	return s.listPage(ctx, page, limit, repository.ItemFilter{MaxPrice: maxPrice})
}

// ListAvailableItems returns a page of items currently in stock.
func (s *CatalogService) ListAvailableItems(ctx context.Context, page, limit int) (*ItemPage, error) {
	return s.listPage(ctx, page, limit, repository.ItemFilter{AvailableOnly: true})
}

// ListItemsBelowPrice returns every item strictly cheaper than price.
func (s *CatalogService) ListItemsBelowPrice(ctx context.Context, price float64) ([]domain.Item, error) {
	return s.items.ListWithFilter(ctx, repository.ItemFilter{BelowPrice: &price})
}

func (s *CatalogService) listPage(ctx context.Context, page, limit int, filter repository.ItemFilter) (*ItemPage, error) {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	items, err := s.items.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.items.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return &ItemPage{
		Items:       items,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}
