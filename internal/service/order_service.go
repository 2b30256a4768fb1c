package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// OrderService coordinates order workflows. Every read or mutation of an
// existing order runs the admin-or-owner policy against the caller.
type OrderService struct {
	orders     repository.OrderRepository
	items      repository.ItemRepository
	dispatcher events.Dispatcher
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo  repository.OrderRepository
	ItemRepo   repository.ItemRepository
	Dispatcher events.Dispatcher
}

// OrderCreateInput describes order creation payload.
type OrderCreateInput struct {
	Title   string
	Amount  float64
	ItemIDs []string
}

// OrderUpdateInput describes a partial order update.
type OrderUpdateInput struct {
	Title   *string
	Amount  *float64
	Status  *domain.OrderStatus
	ItemIDs []string
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		items:      deps.ItemRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateOrder places an order owned by the principal.
func (s *OrderService) CreateOrder(ctx context.Context, principal *auth.Principal, input OrderCreateInput) (*domain.Order, error) {
	order := &domain.Order{
		Title:   strings.TrimSpace(input.Title),
		Amount:  input.Amount,
		UserID:  principal.UserID,
		Status:  domain.OrderStatusPending,
		ItemIDs: input.ItemIDs,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventOrderCreated,
		Actor: events.Actor{UserID: principal.UserID, Role: principal.Role},
		Payload: events.OrderCreatedPayload{
			OrderID: order.ID,
			Title:   order.Title,
			Amount:  order.Amount,
			ItemIDs: order.ItemIDs,
		},
	})
	return order, nil
}

// ValidateOrder resolves the given item ids, sums their prices and places a
// pending order for the principal at the computed total.
func (s *OrderService) ValidateOrder(ctx context.Context, principal *auth.Principal, itemIDs []string) (*domain.Order, error) {
	if len(itemIDs) == 0 {
		return nil, apperrors.NewValidationError("no items in order", nil)
	}

	var total float64
	names := make([]string, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("item", map[string]any{"id": itemID})
			}
			return nil, err
		}
		total += item.Price
		names = append(names, item.Name)
	}

	return s.CreateOrder(ctx, principal, OrderCreateInput{
		Title:   strings.Join(names, ", "),
		Amount:  total,
		ItemIDs: itemIDs,
	})
}

// GetOrder fetches an order the principal is allowed to see.
func (s *OrderService) GetOrder(ctx context.Context, principal *auth.Principal, id string) (*domain.Order, error) {
	order, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, order.UserID); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns every order. Admin access is enforced at the route.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// ListOrdersForUser returns a user's orders to that user or an admin.
func (s *OrderService) ListOrdersForUser(ctx context.Context, principal *auth.Principal, userID string) ([]domain.Order, error) {
	if err := auth.Authorize(principal, userID); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateOrder applies a partial update after the ownership check.
func (s *OrderService) UpdateOrder(ctx context.Context, principal *auth.Principal, id string, input OrderUpdateInput) (*domain.Order, error) {
	order, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, order.UserID); err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if input.Title != nil {
		order.Title = strings.TrimSpace(*input.Title)
	}
	if input.Amount != nil {
		order.Amount = *input.Amount
	}
	if input.Status != nil {
		if !domain.ValidOrderStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown order status", map[string]any{"status": *input.Status})
		}
		order.Status = *input.Status
	}
	if input.ItemIDs != nil {
		order.ItemIDs = input.ItemIDs
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if order.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:  events.EventOrderStatusChanged,
			Actor: events.Actor{UserID: principal.UserID, Role: principal.Role},
			Payload: events.OrderStatusChangedPayload{
				OrderID:   order.ID,
				OldStatus: oldStatus,
				NewStatus: order.Status,
			},
		})
	}
	return order, nil
}

// DeleteOrder removes an order after the ownership check.
func (s *OrderService) DeleteOrder(ctx context.Context, principal *auth.Principal, id string) (*domain.Order, error) {
	order, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, order.UserID); err != nil {
		return nil, err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderDeleted,
		Actor:   events.Actor{UserID: principal.UserID, Role: principal.Role},
		Payload: events.OrderDeletedPayload{OrderID: order.ID},
	})
	return order, nil
}

func (s *OrderService) fetch(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
