package firms

import (
	"errors"

	firmsvc "multinvest-backend/internal/application/firms"
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *firmsvc.Service
}

// List GET /api/v1/firms
func (h *Handlers) List(c *fiber.Ctx) error {
	firms, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Firms fetched successfully", firms, fiber.Map{"count": len(firms)})
}

// Get GET /api/v1/firms/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid firm id", nil)
	}
	firm, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, firmsvc.ErrFirmNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Firm found", firm, nil)
}

// Create POST /api/v1/admin/firms
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req firmsvc.CreateFirmInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, firmsvc.ErrNameRequired.Error(), nil)
	}
	firm, err := h.Service.Create(c.Context(), req)
	if err != nil {
		if errors.Is(err, firmsvc.ErrNameRequired) {
			return response.BadRequest(c, err.Error(), nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Firm created successfully", firm, nil)
}
