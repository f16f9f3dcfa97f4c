package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/middleware"
	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/services"
)

// AuthHandler handles registration, login and phone verification.
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func registrationFieldsPresent(email, phone, firstName, lastName, password string) bool {
	return email != "" && phone != "" && firstName != "" && lastName != "" && password != ""
}

// RegisterCustomer creates a customer account and sends a verification code.
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req models.CustomerRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !registrationFieldsPresent(req.Email, req.Phone, req.FirstName, req.LastName, req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email, phone, first name, last name and password are required",
		})
	}

	customer, smsWarning, err := h.accounts.RegisterCustomer(req)
	if err != nil {
		return registrationError(c, err)
	}

	body := fiber.Map{
		"message":  "Registration successful. Please verify your phone number.",
		"customer": customer,
	}
	if smsWarning != nil {
		body["warning"] = "Verification SMS could not be sent: " + smsWarning.Error()
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// RegisterProvider creates a provider account and sends a verification code.
func (h *AuthHandler) RegisterProvider(c *fiber.Ctx) error {
	var req models.ProviderRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !registrationFieldsPresent(req.Email, req.Phone, req.FirstName, req.LastName, req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email, phone, first name, last name and password are required",
		})
	}
	if req.VerificationDocument == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification document is required",
		})
	}

	provider, smsWarning, err := h.accounts.RegisterProvider(req)
	if err != nil {
		return registrationError(c, err)
	}

	body := fiber.Map{
		"message":  "Registration successful. Please verify your phone number.",
		"provider": provider,
	}
	if smsWarning != nil {
		body["warning"] = "Verification SMS could not be sent: " + smsWarning.Error()
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

func registrationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email is already registered",
		})
	case errors.Is(err, services.ErrPhoneTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Phone number is already registered",
		})
	case errors.Is(err, services.ErrInvalidPhoneNumber),
		errors.Is(err, services.ErrPhoneUnreachable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification SMS could not be delivered to this phone number",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Registration failed",
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(c *fiber.Ctx, role string) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	token, err := h.accounts.Login(req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"role":    role,
	})
}

// LoginCustomer signs in a customer.
func (h *AuthHandler) LoginCustomer(c *fiber.Ctx) error {
	return h.login(c, models.SubjectCustomer)
}

// LoginProvider signs in a provider.
func (h *AuthHandler) LoginProvider(c *fiber.Ctx) error {
	return h.login(c, models.SubjectProvider)
}

// VerifyOTP checks the submitted code for the authenticated principal and
// marks the account verified on success.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification code is required",
		})
	}

	ok, err := h.accounts.VerifyAccount(principal.UserID, principal.Role, req.Code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Verification failed",
		})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired verification code",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Account verified successfully",
	})
}

// ResendOTP issues a fresh verification code for the principal.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	principal := middleware.Principal(c)

	if err := h.accounts.ResendOTP(principal.UserID, principal.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Account not found",
			})
		case errors.Is(err, services.ErrInvalidPhoneNumber),
			errors.Is(err, services.ErrPhoneUnreachable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Verification SMS could not be delivered to this phone number",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resend verification code",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Verification code sent",
	})
}
