package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/budget-service/internal/api/http/handlers"
	"github.com/spec-kit/budget-service/internal/auth"
	"github.com/spec-kit/budget-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Categories     *handlers.CategoriesHandler
	Budgets        *handlers.BudgetsHandler
	Transactions   *handlers.TransactionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh-token", cfg.Auth.Refresh)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/me", cfg.Auth.Me)

	// Categories are listed globally, so renaming or deleting one affects
	// every account; only admins may do either.
	categories := app.Group("/categories", cfg.AuthMiddleware.Handle)
	categories.Post("", cfg.Categories.Create)
	categories.Get("", cfg.Categories.List)
	categories.Get("/my-categories", cfg.Categories.ListMine)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Patch("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Categories.Update)
	categories.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Categories.Delete)

	budgets := app.Group("/budgets", cfg.AuthMiddleware.Handle)
	budgets.Post("", cfg.Budgets.Create)
	budgets.Get("", cfg.Budgets.List)
	budgets.Get("/active", cfg.Budgets.ListActive)
	budgets.Get("/category/:categoryId", cfg.Budgets.ListByCategory)
	budgets.Get("/:id", cfg.Budgets.Get)
	budgets.Patch("/:id", cfg.Budgets.Update)
	budgets.Delete("/:id", cfg.Budgets.Delete)

	transactions := app.Group("/transactions", cfg.AuthMiddleware.Handle)
	transactions.Post("", cfg.Transactions.Create)
	transactions.Get("", cfg.Transactions.List)
	transactions.Get("/:id", cfg.Transactions.Get)
	transactions.Patch("/:id", cfg.Transactions.Update)
	transactions.Delete("/:id", cfg.Transactions.Delete)
}
