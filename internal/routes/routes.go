package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/handlers"
	"github.com/hireplatform/hire-backend/internal/middleware"
	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/services"
	"github.com/hireplatform/hire-backend/internal/storage"
)

// Deps bundles the services the route tree hangs off.
type Deps struct {
	Store    storage.Store
	Accounts *services.AccountService
	Matching *services.MatchingService
	Bookings *services.BookingService
	Payments *services.PaymentService
	Version  string
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	auth := handlers.NewAuthHandler(deps.Accounts)
	customer := handlers.NewCustomerHandler(deps.Accounts, deps.Store)
	provider := handlers.NewProviderHandler(deps.Accounts, deps.Matching, deps.Bookings, deps.Store)
	booking := handlers.NewBookingHandler(deps.Bookings)
	payment := handlers.NewPaymentHandler(deps.Payments, deps.Bookings)
	category := handlers.NewCategoryHandler(deps.Store)
	health := handlers.NewHealthHandler(deps.Version)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to HIRE Backend!",
			"version": deps.Version,
			"endpoints": fiber.Map{
				"health":     "/health",
				"api":        "/api",
				"categories": "/api/categories",
			},
		})
	})

	app.Get("/health", health.Check)

	api := app.Group("/api")

	// Public catalogue and discovery
	api.Get("/categories", category.List)
	api.Post("/categories", category.Create)
	api.Get("/providers/top", provider.TopRated)
	api.Get("/providers/:id/slots", provider.Slots)

	// Registration and login
	customers := api.Group("/customers")
	customers.Post("/register", auth.RegisterCustomer)
	customers.Post("/login", auth.LoginCustomer)

	providers := api.Group("/providers")
	providers.Post("/register", auth.RegisterProvider)
	providers.Post("/login", auth.LoginProvider)

	// Phone verification for either role
	authGroup := api.Group("/auth", middleware.Protected())
	authGroup.Post("/verify-otp", auth.VerifyOTP)
	authGroup.Post("/resend-otp", auth.ResendOTP)

	// Customer account
	customers.Get("/me", middleware.Protected(), middleware.RequireRole(models.SubjectCustomer), customer.GetProfile)
	customers.Post("/addresses", middleware.Protected(), middleware.RequireRole(models.SubjectCustomer), customer.AddAddress)
	customers.Get("/addresses", middleware.Protected(), middleware.RequireRole(models.SubjectCustomer), customer.ListAddresses)
	customers.Get("/bookings", middleware.Protected(), middleware.RequireRole(models.SubjectCustomer), customer.ListBookings)

	// Provider account
	providers.Get("/me", middleware.Protected(), middleware.RequireRole(models.SubjectProvider), provider.GetProfile)
	providers.Post("/services", middleware.Protected(), middleware.RequireRole(models.SubjectProvider), provider.AddService)
	providers.Get("/services", middleware.Protected(), middleware.RequireRole(models.SubjectProvider), provider.ListServices)
	providers.Post("/addresses", middleware.Protected(), middleware.RequireRole(models.SubjectProvider), provider.AddAddress)
	providers.Patch("/availability", middleware.Protected(), middleware.RequireRole(models.SubjectProvider), provider.SetAvailability)
	providers.Get("/bookings", middleware.Protected(), middleware.RequireRole(models.SubjectProvider), provider.ListBookings)

	// Provider search is customer-driven
	api.Get("/providers/search", middleware.Protected(), middleware.RequireRole(models.SubjectCustomer), provider.Search)

	// Booking lifecycle
	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Post("/", middleware.RequireRole(models.SubjectCustomer), booking.Create)
	bookings.Get("/:id", booking.Get)
	bookings.Post("/:id/cancel", booking.Cancel)
	bookings.Post("/:id/complete", middleware.RequireRole(models.SubjectProvider), booking.Complete)
	bookings.Post("/:id/rate", middleware.RequireRole(models.SubjectCustomer), booking.Rate)

	// Payment capture
	api.Post("/payments/:bookingID", middleware.Protected(), middleware.RequireRole(models.SubjectCustomer), payment.Process)
}
