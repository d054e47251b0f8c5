package auth

import (
	"errors"

	authsvc "multinvest-backend/internal/application/auth"
	usersvc "multinvest-backend/internal/application/user"
	"multinvest-backend/internal/domain"
	"multinvest-backend/internal/middleware"
	"multinvest-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Users      *usersvc.Service
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

func sessionUserFor(u *domain.User) middleware.SessionUser {
	return middleware.SessionUser{
		UserID:   u.UserID.String(),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role(),
	}
}

func userPayload(u *domain.User) fiber.Map {
	return fiber.Map{
		"user_id":  u.UserID.String(),
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role(),
	}
}

// Signup POST /api/v1/auth/signup creates the account and starts a session.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req usersvc.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, usersvc.ErrAllFieldsRequired.Error(), nil)
	}
	u, err := h.Users.Signup(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrEmailRegistered):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		case errors.Is(err, usersvc.ErrAllFieldsRequired),
			errors.Is(err, usersvc.ErrInvalidEmail),
			errors.Is(err, usersvc.ErrInvalidUsername),
			errors.Is(err, usersvc.ErrWeakPassword),
			errors.Is(err, usersvc.ErrPasswordMismatch):
			return response.BadRequest(c, err.Error(), nil)
		default:
			log.Error().Err(err).Msg("signup failed")
			return response.Error(c, "An error occurred during signup.", fiber.StatusInternalServerError, nil)
		}
	}
	if err := middleware.StartSession(c, h.Rdb, h.Config, sessionUserFor(u)); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Signup successful", fiber.Map{"user": userPayload(u)}, nil)
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, authsvc.ErrEmailPasswordRequired.Error(), nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.BadRequest(c, err.Error(), nil)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		default:
			log.Error().Err(err).Msg("login failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if err := middleware.StartSession(c, h.Rdb, h.Config, sessionUserFor(user)); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": userPayload(user)}, nil)
}

// Me GET /api/v1/auth/me returns the session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Str("path", c.Path()).
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout drops the Redis session and clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	middleware.EndSession(c, h.Rdb, h.Config)
	return response.Success(c, "Logged out successfully", nil, nil)
}
