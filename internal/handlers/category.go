package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
)

// CategoryHandler handles the service category catalogue.
type CategoryHandler struct {
	store storage.Store
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(store storage.Store) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// List returns every service category.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.store.GetCategories()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve categories",
		})
	}
	return c.JSON(fiber.Map{
		"categories": categories,
		"count":      len(categories),
	})
}

// Create adds a category to the catalogue.
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category name is required",
		})
	}

	category, err := h.store.CreateCategory(&models.ServiceCategory{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Category already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create category",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}
