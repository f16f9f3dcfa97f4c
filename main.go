package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/database"
	"github.com/hireplatform/hire-backend/internal/jobs"
	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/routes"
	"github.com/hireplatform/hire-backend/internal/services"
	"github.com/hireplatform/hire-backend/internal/storage"
)

const version = "1.0.0"

func buildLogger() (*zap.Logger, error) {
	if os.Getenv("ENVIRONMENT") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			// Running off real environment variables
		}
	}

	logger, err := buildLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Storage: memory for local testing, PostgreSQL otherwise
	var store storage.Store
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		logger.Warn("using in-memory storage, not for production")
		store = storage.NewMemoryStore()
	} else {
		db, err := database.Connect()
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if err := db.AutoMigrate(
			&models.Customer{},
			&models.Provider{},
			&models.ServiceCategory{},
			&models.ProviderCategory{},
			&models.Address{},
			&models.Booking{},
			&models.Payment{},
			&models.OTP{},
		); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		store = storage.NewDatabaseStore(db)
		logger.Info("connected to PostgreSQL")
	}

	// SMS: optional, registration still works without delivery. Missing
	// credentials swap in the disabled sender so OTP callers receive the
	// advisory fault instead of a silent clean path; reminders are simply
	// skipped.
	var sender services.Sender
	var reminderSender services.Sender
	if twilioSender, err := services.NewTwilioSender(); err != nil {
		if errors.Is(err, services.ErrSMSNotConfigured) {
			logger.Warn("Twilio credentials not set, OTP delivery disabled")
			sender = services.NewDisabledSender()
		} else {
			logger.Fatal("Twilio initialization failed", zap.Error(err))
		}
	} else {
		sender = twilioSender
		reminderSender = twilioSender
	}

	// Geocoding: optional, addresses just stay without coordinates
	var geocoder services.Geocoder
	if googleGeocoder, err := services.NewGoogleGeocoder(logger); err != nil {
		if errors.Is(err, services.ErrGeocoderNotConfigured) {
			logger.Warn("Google Maps key not set, geocoding disabled")
		} else {
			logger.Fatal("geocoder initialization failed", zap.Error(err))
		}
	} else {
		geocoder = googleGeocoder
	}

	smsTestMode := os.Getenv("SMS_TEST_MODE") == "true"

	otpService := services.NewOTPService(store, sender, smsTestMode, logger)
	accountService := services.NewAccountService(store, otpService, geocoder, logger)
	matchingService := services.NewMatchingService(store, logger)
	ratingService := services.NewRatingService(store, logger)
	bookingService := services.NewBookingService(store, ratingService, logger)
	paymentService := services.NewPaymentService(store, bookingService, logger)

	maintenanceJob := jobs.NewMaintenanceJob(store, reminderSender, logger)
	maintenanceJob.Start()

	app := fiber.New(fiber.Config{
		AppName: "HIRE Backend v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Deps{
		Store:    store,
		Accounts: accountService,
		Matching: matchingService,
		Bookings: bookingService,
		Payments: paymentService,
		Version:  version,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		maintenanceJob.Stop()
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
