package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/middleware"
	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/services"
)

// BookingHandler handles the booking lifecycle endpoints.
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create books a provider slot for the authenticated customer.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var req models.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	// The customer books for themself; the body cannot override it.
	req.CustomerID = principal.UserID

	booking, err := h.bookings.Create(req)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": validationErr.Fields,
			})
		}
		if errors.Is(err, services.ErrSlotConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "This time slot is already booked",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create booking",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// Get retrieves a booking. Only its customer or provider may view it.
func (h *BookingHandler) Get(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	booking, err := h.bookings.Get(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Booking not found",
		})
	}

	authorized := (principal.Role == models.SubjectCustomer && booking.CustomerID == principal.UserID) ||
		(principal.Role == models.SubjectProvider && booking.ProviderID == principal.UserID)
	if !authorized {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not a party to this booking",
		})
	}

	return c.JSON(booking)
}

// Cancel cancels a booking on behalf of the authenticated principal.
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	if err := h.bookings.Cancel(uint(id), principal.Role, principal.UserID); err != nil {
		return bookingActionError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Booking cancelled successfully",
	})
}

// Complete marks a booking as done; provider only.
func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	if err := h.bookings.Complete(uint(id), principal.UserID); err != nil {
		return bookingActionError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Booking completed successfully",
	})
}

// Rate attaches a rating to a completed booking; customer only.
func (h *BookingHandler) Rate(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.bookings.Rate(uint(id), principal.UserID, req.Rating, req.Comment); err != nil {
		return bookingActionError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Thank you for your rating",
	})
}

func bookingActionError(c *fiber.Ctx, err error) error {
	var stateErr *services.StateError
	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Booking not found",
		})
	case errors.Is(err, services.ErrNotAuthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not a party to this booking",
		})
	case errors.As(err, &stateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  stateErr.Error(),
			"status": stateErr.Current,
		})
	case errors.Is(err, services.ErrAlreadyRated):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Booking has already been rated",
		})
	case errors.Is(err, services.ErrInvalidRating):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rating must be between 1 and 5",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Booking update failed",
		})
	}
}
