package dashboard

import (
	"errors"

	dashsvc "multinvest-backend/internal/application/dashboard"
	usersvc "multinvest-backend/internal/application/user"
	"multinvest-backend/internal/middleware"
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *dashsvc.Service
}

// Get GET /api/v1/dashboard
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	d, err := h.Service.Build(c.Context(), userID)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return response.NotFound(c, err.Error())
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("dashboard build failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Dashboard fetched successfully", d, nil)
}
