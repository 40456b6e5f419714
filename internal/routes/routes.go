package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/config"
	"github.com/example/tiryaq/internal/handlers"
	"github.com/example/tiryaq/internal/middleware"
	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/store"
)

// NewApp builds the fiber application with middleware and routes attached.
// notifier may be nil.
func NewApp(cfg *config.Config, st store.Store, notifier handlers.Notifier) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Tiryaq Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(middleware.RequestLogger(log.Logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
	}))

	Register(app, cfg, st, notifier)
	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, st store.Store, notifier handlers.Notifier) {
	authHandler := handlers.NewAuthHandler(st, cfg, notifier)
	pharmacyHandler := handlers.NewPharmacyHandler(st)
	orderHandler := handlers.NewOrderHandler(st)
	complaintHandler := handlers.NewComplaintHandler(st)
	adminHandler := handlers.NewAdminHandler(st)

	authRequired := middleware.AuthMiddleware(cfg.JWTSecret)

	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	api.Post("/users/register", authHandler.RegisterCustomer)

	// Pharmacies
	pharmacies := api.Group("/pharmacies")
	pharmacies.Get("/", pharmacyHandler.ListPharmacies)
	pharmacies.Get("/:id/medicines", pharmacyHandler.ListMedicines)
	pharmacies.Post("/medicine", authRequired, middleware.RequireRole(models.RolePharmacy), pharmacyHandler.AddMedicine)

	// Orders
	orders := api.Group("/orders", authRequired)
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", middleware.RequireRole(models.RoleUser), orderHandler.CreateOrder)
	orders.Post("/create", middleware.RequireRole(models.RoleUser), orderHandler.CreateOrder)
	orders.Patch("/:id/status",
		middleware.RequireRole(models.RolePharmacy, models.RoleDriver, models.RoleAdmin),
		orderHandler.UpdateOrder)

	api.Post("/complaints", authRequired, complaintHandler.CreateComplaint)

	// Admin routes
	admin := api.Group("/admin", authRequired, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/pending", adminHandler.ListPending)
	admin.Post("/approve", adminHandler.Approve)
	admin.Get("/complaints", adminHandler.ListComplaints)
}
