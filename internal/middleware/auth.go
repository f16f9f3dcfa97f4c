package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/utils"
)

// PrincipalKey is the locals key the authenticated principal is stored under.
const PrincipalKey = "principal"

// Protected authenticates the request from its Bearer token and stores the
// resolved principal in locals. The principal carries the role it was issued
// with; handlers never re-derive it from the user record.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header is required",
			})
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header must be a Bearer token",
			})
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(PrincipalKey, claims)
		return c.Next()
	}
}

// RequireRole gates a route to principals holding the given role tag.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Principal(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		if claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// Principal returns the authenticated principal, or nil outside Protected.
func Principal(c *fiber.Ctx) *utils.PrincipalClaims {
	claims, _ := c.Locals(PrincipalKey).(*utils.PrincipalClaims)
	return claims
}
