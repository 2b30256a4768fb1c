package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// ItemsHandler manages catalog endpoints.
type ItemsHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(catalogService *service.CatalogService, orderService *service.OrderService) *ItemsHandler {
	return &ItemsHandler{catalog: catalogService, orders: orderService}
}

// List GET /items with pagination and optional max-price filter.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	var maxPrice *float64
	if raw := c.Query("price"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid price filter", map[string]any{"price": raw})
		}
		maxPrice = &parsed
	}

	result, err := h.catalog.ListItems(c.UserContext(), page, limit, maxPrice)
	if err != nil {
		return err
	}
	return c.JSON(itemPageResponse(result))
}

// ListAvailable GET /items/available with pagination.
func (h *ItemsHandler) ListAvailable(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.catalog.ListAvailableItems(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(itemPageResponse(result))
}

// ListBelowPrice GET /items/below-price/:price.
func (h *ItemsHandler) ListBelowPrice(c *fiber.Ctx) error {
	price, err := strconv.ParseFloat(c.Params("price"), 64)
	if err != nil {
		return apperrors.NewValidationError("invalid price", map[string]any{"price": c.Params("price")})
	}

	items, err := h.catalog.ListItemsBelowPrice(c.UserContext(), price)
	if err != nil {
		return err
	}
	responses := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, dto.NewItemResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Get GET /items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	item, err := h.catalog.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Create POST /items.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Price == nil || req.Available == nil {
		return apperrors.NewValidationError("name, price, available required", nil)
	}

	item, err := h.catalog.CreateItem(c.UserContext(), service.ItemCreateInput{
		Name:      req.Name,
		Price:     *req.Price,
		Available: *req.Available,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Update PATCH /items/:id.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.catalog.UpdateItem(c.UserContext(), c.Params("id"), service.ItemUpdateInput{
		Name:      req.Name,
		Price:     req.Price,
		Available: req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Delete DELETE /items/:id.
func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	item, err := h.catalog.DeleteItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// ValidateOrder POST /items/validate-order. Requires authentication; the
// resulting order belongs to the caller.
func (h *ItemsHandler) ValidateOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no token provided")
	}
	var req dto.ValidateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	order, err := h.orders.ValidateOrder(c.UserContext(), principal, req.Items)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"message":     "order validated",
			"totalAmount": order.Amount,
			"order":       dto.NewOrderResponse(order),
		},
	})
}

func itemPageResponse(page *service.ItemPage) dto.ItemPageResponse {
	items := make([]dto.ItemResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewItemResponse(&page.Items[i]))
	}
	return dto.ItemPageResponse{
		Items:       items,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}
