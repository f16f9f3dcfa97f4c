package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/middleware"
	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/services"
	"github.com/hireplatform/hire-backend/internal/storage"
)

// ProviderHandler handles provider profiles, offerings, search and schedules.
type ProviderHandler struct {
	accounts *services.AccountService
	matching *services.MatchingService
	bookings *services.BookingService
	store    storage.Store
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(accounts *services.AccountService, matching *services.MatchingService, bookings *services.BookingService, store storage.Store) *ProviderHandler {
	return &ProviderHandler{accounts: accounts, matching: matching, bookings: bookings, store: store}
}

// GetProfile returns the authenticated provider's record.
func (h *ProviderHandler) GetProfile(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	provider, err := h.store.GetProvider(principal.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Provider not found",
		})
	}
	return c.JSON(provider)
}

// AddService lists the authenticated provider in a category at a price.
func (h *ProviderHandler) AddService(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var req struct {
		CategoryID uint    `json:"category_id"`
		PriceRate  float64 `json:"price_rate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.CategoryID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category ID is required",
		})
	}

	offering, err := h.accounts.AddOffering(principal.UserID, req.CategoryID, req.PriceRate)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Price rate must be positive",
			})
		case errors.Is(err, services.ErrOfferingExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "You already offer this category",
			})
		case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to add service",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Service added successfully",
		"offering": offering,
	})
}

// ListServices returns the authenticated provider's offerings.
func (h *ProviderHandler) ListServices(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	offerings, err := h.store.GetOfferingsByProvider(principal.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve services",
		})
	}
	return c.JSON(fiber.Map{
		"services": offerings,
		"count":    len(offerings),
	})
}

// AddAddress stores the authenticated provider's service address.
func (h *ProviderHandler) AddAddress(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var req models.Address
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Line == "" || req.City == "" || req.State == "" || req.PostalCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Address line, city, state and postal code are required",
		})
	}

	address, err := h.accounts.AddProviderAddress(principal.UserID, &req)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Provider not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add address",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Address added successfully",
		"address": address,
	})
}

// SetAvailability flips the authenticated provider's availability flag.
func (h *ProviderHandler) SetAvailability(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.accounts.SetAvailability(principal.UserID, req.IsAvailable); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update availability",
		})
	}
	return c.JSON(fiber.Map{
		"message":      "Availability updated",
		"is_available": req.IsAvailable,
	})
}

// ListBookings returns the authenticated provider's bookings.
func (h *ProviderHandler) ListBookings(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	bookings, err := h.store.GetBookingsByProvider(principal.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve bookings",
		})
	}
	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Search ranks matching providers for the authenticated customer. The
// customer's saved address drives proximity scoring.
func (h *ProviderHandler) Search(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	categoryID := c.QueryInt("category_id")
	if categoryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category_id query parameter is required",
		})
	}
	addressID := c.QueryInt("address_id")
	if addressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "address_id query parameter is required",
		})
	}
	limit := c.QueryInt("limit", services.DefaultMatchLimit)

	address, err := h.store.GetAddress(uint(addressID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Address not found",
		})
	}
	if address.CustomerID == nil || *address.CustomerID != principal.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Address does not belong to you",
		})
	}

	providers, err := h.matching.FindMatchingProviders(address, uint(categoryID), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}
	return c.JSON(fiber.Map{
		"providers": providers,
		"count":     len(providers),
	})
}

// TopRated returns the highest-rated verified providers.
func (h *ProviderHandler) TopRated(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultMatchLimit)

	providers, err := h.store.GetTopRatedProviders(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve providers",
		})
	}
	return c.JSON(fiber.Map{
		"providers": providers,
		"count":     len(providers),
	})
}

// Slots returns a provider's free time slots on a date.
func (h *ProviderHandler) Slots(c *fiber.Ctx) error {
	providerID, err := c.ParamsInt("id")
	if err != nil || providerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid provider ID",
		})
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date query parameter is required",
		})
	}
	date, err := time.ParseInLocation(models.BookingDateLayout, dateStr, time.Local)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format (use YYYY-MM-DD)",
		})
	}

	slots, err := h.bookings.AvailableSlots(uint(providerID), date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve slots",
		})
	}
	return c.JSON(fiber.Map{
		"provider_id": providerID,
		"date":        dateStr,
		"slots":       slots,
	})
}
