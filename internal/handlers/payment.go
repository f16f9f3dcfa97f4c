package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/middleware"
	"github.com/hireplatform/hire-backend/internal/services"
)

// PaymentHandler handles payment capture for bookings.
type PaymentHandler struct {
	payments *services.PaymentService
	bookings *services.BookingService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments *services.PaymentService, bookings *services.BookingService) *PaymentHandler {
	return &PaymentHandler{payments: payments, bookings: bookings}
}

// Process captures payment for the customer's pending booking and confirms it.
func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	bookingID, err := c.ParamsInt("bookingID")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	booking, err := h.bookings.Get(uint(bookingID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Booking not found",
		})
	}
	if booking.CustomerID != principal.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not a party to this booking",
		})
	}

	payment, err := h.payments.Process(uint(bookingID), req.PaymentMethod)
	if err != nil {
		var stateErr *services.StateError
		switch {
		case errors.Is(err, services.ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unsupported payment method",
			})
		case errors.Is(err, services.ErrPaymentExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Booking already has a payment",
			})
		case errors.Is(err, services.ErrNoOfferingPrice):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Provider has no price listed for this category",
			})
		case errors.As(err, &stateErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  stateErr.Error(),
				"status": stateErr.Current,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Payment failed",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment successful, booking confirmed",
		"payment": payment,
	})
}
