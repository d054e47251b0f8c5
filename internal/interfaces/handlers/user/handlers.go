package user

import (
	"errors"
	"strings"

	policies "multinvest-backend/internal/application/policies/user"
	"multinvest-backend/internal/application/projection"
	usersvc "multinvest-backend/internal/application/user"
	"multinvest-backend/internal/domain"
	"multinvest-backend/internal/middleware"
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type Handlers struct {
	Service *usersvc.Service
	Rdb     *redis.Client
}

// BalanceRequest adjusts a balance by Delta (negative debits). Delta may be a
// JSON number or a numeric string.
type BalanceRequest struct {
	Delta interface{} `json:"delta"`
	Note  string      `json:"note"`
}

func safeUser(u *domain.User) fiber.Map {
	return fiber.Map{
		"user_id":    u.UserID,
		"username":   u.Username,
		"email":      u.Email,
		"balance":    u.Balance.StringFixed(2),
		"is_admin":   u.IsAdmin,
		"role":       u.Role(),
		"created_at": u.CreatedAt,
	}
}

// ViewUser GET /api/v1/users/me returns the session user's stored record.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	userID, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.Context(), userID)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "User found", fiber.Map{"user": safeUser(u)}, nil)
}

// AdjustBalance PATCH /api/v1/admin/users/:id/balance
func (h *Handlers) AdjustBalance(c *fiber.Ctx) error {
	actor, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := usersvc.ParseUserID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID format (must be a valid UUID)", nil)
	}
	var req BalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, usersvc.ErrInvalidAmount.Error(), nil)
	}
	delta, err := parseDelta(req.Delta)
	if err != nil {
		return response.BadRequest(c, usersvc.ErrInvalidAmount.Error(), nil)
	}
	u, err := h.Service.AdjustBalance(c.Context(), actor, id, delta, strings.TrimSpace(req.Note))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Balance updated", fiber.Map{"user": safeUser(u)}, nil)
}

type RoleRequest struct {
	Role string `json:"role" form:"role"`
}

// UpdateRole PATCH /api/v1/admin/users/:id/role
// The target's sessions are dropped so the new role applies on next login.
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	actor, ok := middleware.SessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := usersvc.ParseUserID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID format (must be a valid UUID)", nil)
	}
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, policies.ErrInvalidRole.Error(), nil)
	}
	u, err := h.Service.SetRole(c.Context(), actor, id, req.Role)
	if err != nil {
		return mapError(c, err)
	}
	if err := policies.DestroyUserSessions(c.Context(), h.Rdb, u.UserID.String()); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("role change: session cleanup failed")
	}
	return response.Success(c, "Role updated", fiber.Map{"user": safeUser(u)}, nil)
}

// parseDelta accepts a number or numeric string.
func parseDelta(v interface{}) (decimal.Decimal, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, err
	}
	return projection.ParseDecimal(s)
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usersvc.ErrUserNotFound), errors.Is(err, policies.ErrTargetUserNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, policies.ErrInvalidRole):
		return response.BadRequest(c, err.Error(), nil)
	case errors.Is(err, policies.ErrUsersCannotModifyTheirOwnRole):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, policies.ErrPlatformMustHaveAnAdmin):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, usersvc.ErrInvalidAmount):
		return response.BadRequest(c, err.Error(), nil)
	case errors.Is(err, usersvc.ErrNegativeBalance):
		return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("users: unexpected error")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
