package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

// SessionConfig for the Redis-backed session cookie.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
	CookieDomain      string
}

const (
	SessionCookieName  = "multinvest.sid"
	SessionRedisPrefix = "session:"
	UserSessionsPrefix = "user_sessions:"
	sessionMaxAge      = 24 * time.Hour
)

const (
	localSessionData = "session_data"
	localSessionID   = "session_id"
)

// SessionUser is the shape stored in session under "user".
type SessionUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// SessionStore is the session middleware over an existing client.
// Cookie values are "s:<id>.<signature>"; a bad signature is treated as no session.
func SessionStore(rdb *redis.Client, cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, ok := unsignSessionID(c.Cookies(SessionCookieName), cfg.Secret)
		if !ok {
			sessionID = ""
		}

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.Context(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session: redis get failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(localSessionData, data)
		if u, ok := data["user"]; ok {
			c.Locals(userLocal, u)
		} else {
			c.Locals(userLocal, nil)
		}
		c.Locals(localSessionID, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		// Persist only while a session id is live; logout clears it.
		if sid, _ := c.Locals(localSessionID).(string); sid != "" {
			updated, _ := c.Locals(localSessionData).(map[string]interface{})
			if len(updated) > 0 {
				b, _ := json.Marshal(updated)
				if err := rdb.Set(context.Background(), SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
					log.Warn().Err(err).Msg("session: redis set failed")
				}
			}
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSessionID).(string)
	return sid
}

// SetSessionUser sets the user in the session and marks session for save.
// Call after login/signup; use RegenerateSessionID first to get a new id.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(localSessionData).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"user_id":  user.UserID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
	c.Locals(localSessionData, data)
	c.Locals(userLocal, data["user"])
}

// RegenerateSessionID creates a new session ID and sets it in Locals.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(localSessionID, newID)
	return newID
}

// DestroySession clears user, data and id from Locals; caller must clear cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals(localSessionData, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(localSessionID, "")
}

// SessionCookie returns the cookie carrying sessionID, or a clearing cookie when sessionID is empty.
func SessionCookie(cfg SessionConfig, sessionID string) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cfg.AllowCrossSiteDev {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	cookie := &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    signSessionID(sessionID, cfg.Secret),
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
	if sessionID == "" {
		cookie.Value = ""
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0).UTC()
	}
	return cookie
}

// CurrentUser decodes the session user from Locals.
func CurrentUser(c *fiber.Ctx) (*SessionUser, bool) {
	return DecodeSessionUser(GetUser(c))
}

// DecodeSessionUser converts the stored session map back into a SessionUser.
// A user without user_id or role is not a valid session user.
func DecodeSessionUser(v interface{}) (*SessionUser, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	u := &SessionUser{
		UserID:   cast.ToString(m["user_id"]),
		Username: cast.ToString(m["username"]),
		Email:    cast.ToString(m["email"]),
		Role:     cast.ToString(m["role"]),
	}
	if u.UserID == "" || u.Role == "" {
		return nil, false
	}
	return u, true
}

func signSessionID(id, secret string) string {
	if id == "" {
		return ""
	}
	if secret == "" {
		return "s:" + id
	}
	return "s:" + id + "." + sessionMAC(id, secret)
}

func unsignSessionID(value, secret string) (string, bool) {
	if !strings.HasPrefix(value, "s:") {
		return "", false
	}
	id, sig, signed := strings.Cut(value[2:], ".")
	if secret == "" {
		return id, id != ""
	}
	if !signed || !hmac.Equal([]byte(sig), []byte(sessionMAC(id, secret))) {
		return "", false
	}
	return id, true
}

func sessionMAC(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// StartSession rotates the session id, stores user in it, tracks the id under
// user_sessions:<user_id> and sets the cookie.
func StartSession(c *fiber.Ctx, rdb *redis.Client, cfg SessionConfig, user SessionUser) error {
	sid := RegenerateSessionID(c)
	SetSessionUser(c, user)
	if rdb != nil {
		if err := rdb.SAdd(c.Context(), UserSessionsPrefix+user.UserID, sid).Err(); err != nil {
			return err
		}
	}
	c.Cookie(SessionCookie(cfg, sid))
	return nil
}

// EndSession removes the session from Redis and clears the cookie.
func EndSession(c *fiber.Ctx, rdb *redis.Client, cfg SessionConfig) {
	sid := GetSessionID(c)
	if rdb != nil && sid != "" {
		ctx := context.Background()
		if u, ok := CurrentUser(c); ok {
			_ = rdb.SRem(ctx, UserSessionsPrefix+u.UserID, sid).Err()
		}
		_ = rdb.Del(ctx, SessionRedisPrefix+sid).Err()
	}
	DestroySession(c)
	c.Cookie(SessionCookie(cfg, ""))
}
