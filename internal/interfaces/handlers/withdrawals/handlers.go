package withdrawals

import (
	"encoding/json"
	"errors"

	wdsvc "multinvest-backend/internal/application/withdrawals"
	"multinvest-backend/internal/middleware"
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *wdsvc.Service
}

type RequestBody struct {
	WalletAddress string      `json:"wallet_address" form:"wallet_address"`
	Amount        json.Number `json:"amount" form:"amount"`
}

type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

// Request POST /api/v1/withdrawals
func (h *Handlers) Request(c *fiber.Ctx) error {
	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req RequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, wdsvc.ErrMissingFields.Error(), nil)
	}
	w, err := h.Service.Request(c.Context(), userID, wdsvc.RequestInput{
		WalletAddress: req.WalletAddress,
		Amount:        req.Amount.String(),
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Withdrawal requested", wdsvc.ToView(*w), nil)
}

// List GET /api/v1/withdrawals
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	ws, err := h.Service.ListForUser(c.Context(), userID)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Withdrawals fetched successfully", ws, nil)
}

// ListAll GET /api/v1/admin/withdrawals?status=
func (h *Handlers) ListAll(c *fiber.Ctx) error {
	ws, err := h.Service.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Withdrawals fetched successfully", ws, nil)
}

// UpdateStatus PATCH /api/v1/admin/withdrawals/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid withdrawal id", nil)
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, wdsvc.ErrInvalidStatus.Error(), nil)
	}
	w, err := h.Service.UpdateStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Withdrawal status updated", wdsvc.ToView(*w), nil)
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, wdsvc.ErrMissingFields),
		errors.Is(err, wdsvc.ErrInvalidWallet),
		errors.Is(err, wdsvc.ErrInvalidAmount),
		errors.Is(err, wdsvc.ErrInvalidStatus):
		return response.BadRequest(c, err.Error(), nil)
	case errors.Is(err, wdsvc.ErrInsufficientBalance):
		return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
	case errors.Is(err, wdsvc.ErrWithdrawalNotFound), errors.Is(err, wdsvc.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, wdsvc.ErrInvalidTransition):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("withdrawals: unexpected error")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
