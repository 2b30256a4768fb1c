package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Items          *handlers.ItemsHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	users := app.Group("/users")
	users.Post("/signup", cfg.Users.Signup)
	users.Post("/login", cfg.Users.Login)
	users.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)
	users.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)
	users.Patch("/me", cfg.AuthMiddleware.Handle, cfg.Users.UpdateMe)
	users.Get("/", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Users.List)
	users.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Users.Delete)

	// catalog reads and writes are public; static paths registered before :id
	items := app.Group("/items")
	items.Get("/available", cfg.Items.ListAvailable)
	items.Get("/below-price/:price", cfg.Items.ListBelowPrice)
	items.Post("/validate-order", cfg.AuthMiddleware.Handle, cfg.Items.ValidateOrder)
	items.Get("/", cfg.Items.List)
	items.Post("/", cfg.Items.Create)
	items.Get("/:id", cfg.Items.Get)
	items.Patch("/:id", cfg.Items.Update)
	items.Delete("/:id", cfg.Items.Delete)

	orders := app.Group("/orders", cfg.AuthMiddleware.Handle)
	orders.Get("/", auth.RequireAdmin(), cfg.Orders.List)
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/user/:userId", cfg.Orders.ListForUser)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id", cfg.Orders.Update)
	orders.Delete("/:id", cfg.Orders.Delete)
}
