package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/http/handlers"
	"github.com/spec-kit/campus-market/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Services       *handlers.ServicesHandler
	Transactions   *handlers.TransactionsHandler
	Messages       *handlers.MessagesHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Fixed path segments are registered before
// parameterized siblings; Fiber matches in registration order.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Users.Me)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Users.UpdateMe)

	services := app.Group("/services")
	services.Get("/", cfg.Services.Browse)
	services.Get("/my-services", cfg.AuthMiddleware.Handle, cfg.Services.Mine)
	services.Post("/request", cfg.AuthMiddleware.Handle, cfg.Transactions.Request)
	services.Get("/:id", cfg.Services.Get)
	services.Post("/", cfg.AuthMiddleware.Handle, cfg.Services.Create)
	services.Put("/:id", cfg.AuthMiddleware.Handle, cfg.Services.Update)
	services.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Services.Delete)

	transactions := app.Group("/transactions", cfg.AuthMiddleware.Handle)
	transactions.Get("/my-transactions", cfg.Transactions.List)
	transactions.Get("/:id", cfg.Transactions.Get)
	transactions.Put("/:id/accept", cfg.Transactions.Accept)
	transactions.Put("/:id/advance-paid", cfg.Transactions.PayAdvance)
	transactions.Put("/:id/work-completed", cfg.Transactions.CompleteWork)
	transactions.Put("/:id/final-paid", cfg.Transactions.PayFinal)
	transactions.Put("/:id/complete", cfg.Transactions.Complete)
	transactions.Put("/:id/cancel", cfg.Transactions.Cancel)
	transactions.Put("/:id/dispute", cfg.Transactions.Dispute)
	transactions.Post("/:id/rate/:role", cfg.Transactions.Rate)

	messages := app.Group("/messages", cfg.AuthMiddleware.Handle)
	messages.Get("/conversations", cfg.Messages.Conversations)
	messages.Put("/read/:messageId", cfg.Messages.MarkRead)
	messages.Get("/:userId", cfg.Messages.Thread)
	messages.Post("/:userId", cfg.Messages.Send)

	users := app.Group("/users")
	users.Put("/skills", cfg.AuthMiddleware.Handle, cfg.Users.UpdateSkills)
	users.Get("/earnings", cfg.AuthMiddleware.Handle, cfg.Users.Earnings)
	users.Get("/:id/transactions", cfg.AuthMiddleware.Handle, cfg.Users.Transactions)
	users.Get("/:id", cfg.Users.PublicProfile)
}
