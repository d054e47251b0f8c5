package investments

import (
	"encoding/json"
	"errors"

	invsvc "multinvest-backend/internal/application/investments"
	"multinvest-backend/internal/middleware"
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *invsvc.Service
}

// CreateRequest accepts amount as a JSON number or numeric string.
type CreateRequest struct {
	FirmID        string      `json:"firm_id" form:"firm_id"`
	TransactionID string      `json:"transaction_id" form:"transaction_id"`
	Amount        json.Number `json:"amount" form:"amount"`
}

type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

// Create POST /api/v1/investments
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, invsvc.ErrMissingFields.Error(), nil)
	}
	inv, err := h.Service.Create(c.Context(), userID, invsvc.CreateInput{
		FirmID:        req.FirmID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount.String(),
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Investment submitted and marked pending.", inv, nil)
}

// List GET /api/v1/investments
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	views, pass, err := h.Service.ListForUser(c.Context(), userID)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Investments fetched successfully", views, fiber.Map{"projection": pass})
}

// ListAll GET /api/v1/admin/investments?status=
func (h *Handlers) ListAll(c *fiber.Ctx) error {
	views, pass, err := h.Service.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Investments fetched successfully", views, fiber.Map{"projection": pass})
}

// UpdateStatus PATCH /api/v1/admin/investments/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid investment id", nil)
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, invsvc.ErrInvalidStatus.Error(), nil)
	}
	inv, err := h.Service.UpdateStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Investment status updated", inv, nil)
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, invsvc.ErrMissingFields),
		errors.Is(err, invsvc.ErrInvalidAmount),
		errors.Is(err, invsvc.ErrInvalidFirm),
		errors.Is(err, invsvc.ErrInvalidStatus):
		return response.BadRequest(c, err.Error(), nil)
	case errors.Is(err, invsvc.ErrFirmNotFound), errors.Is(err, invsvc.ErrInvestmentNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, invsvc.ErrInvalidTransition):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("investments: unexpected error")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
