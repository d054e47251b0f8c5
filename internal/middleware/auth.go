package middleware

import (
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a valid user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// SessionUserID returns the logged-in user's id.
func SessionUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(u.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
