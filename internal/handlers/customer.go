package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/middleware"
	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/services"
	"github.com/hireplatform/hire-backend/internal/storage"
)

// CustomerHandler handles customer profile, address and booking listings.
type CustomerHandler struct {
	accounts *services.AccountService
	store    storage.Store
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(accounts *services.AccountService, store storage.Store) *CustomerHandler {
	return &CustomerHandler{accounts: accounts, store: store}
}

// GetProfile returns the authenticated customer's record.
func (h *CustomerHandler) GetProfile(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	customer, err := h.store.GetCustomer(principal.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Customer not found",
		})
	}
	return c.JSON(customer)
}

// AddAddress stores a new address for the authenticated customer.
func (h *CustomerHandler) AddAddress(c *fiber.Ctx) error {
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

	address, err := h.accounts.AddCustomerAddress(principal.UserID, &req)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
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

// ListAddresses returns the authenticated customer's addresses.
func (h *CustomerHandler) ListAddresses(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	addresses, err := h.store.GetAddressesByCustomer(principal.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve addresses",
		})
	}
	return c.JSON(fiber.Map{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// ListBookings returns the authenticated customer's bookings.
func (h *CustomerHandler) ListBookings(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	bookings, err := h.store.GetBookingsByCustomer(principal.UserID)
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
