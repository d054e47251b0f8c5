package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"multinvest-backend/internal/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".multinvest.com", DevPassword: "letmein"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	cases := []struct {
		name, method, origin, devPw string
		status                      int
		allowOrigin                 bool
	}{
		{"no origin", "GET", "", "", fiber.StatusOK, false},
		{"suffix match", "GET", "https://app.multinvest.com", "", fiber.StatusOK, true},
		{"suffix preflight", "OPTIONS", "https://app.multinvest.com", "", fiber.StatusNoContent, true},
		{"localhost preflight", "OPTIONS", "http://localhost:3000", "", fiber.StatusNoContent, true},
		{"dev password", "GET", "https://preview.example.dev", "letmein", fiber.StatusOK, true},
		{"foreign origin", "GET", "https://evil.example.com", "", fiber.StatusForbidden, false},
		{"wrong dev password", "GET", "https://evil.example.com", "nope", fiber.StatusForbidden, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.devPw != "" {
				req.Header.Set("dev-password", tc.devPw)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.allowOrigin {
				assert.Equal(t, tc.origin, resp.Header.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestAuthorizePermission(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			SetSessionUser(c, SessionUser{UserID: uuid.NewString(), Role: role})
		}
		return c.Next()
	})
	app.Get("/firms", AuthorizePermission(constants.ManageFirms), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/broken", AuthorizePermission("does_not_exist"), func(c *fiber.Ctx) error { return c.SendString("ok") })

	get := func(path, role string) int {
		req := httptest.NewRequest("GET", path, nil)
		if role != "" {
			req.Header.Set("X-Role", role)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, fiber.StatusUnauthorized, get("/firms", ""))
	assert.Equal(t, fiber.StatusForbidden, get("/firms", constants.Investor))
	assert.Equal(t, fiber.StatusOK, get("/firms", constants.Admin))
	assert.Equal(t, fiber.StatusInternalServerError, get("/broken", constants.Admin))
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Use(RequireAuth())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "error", out["status"])
}

func TestTracing(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get("X-Trace-Id")
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", incoming)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, incoming, resp.Header.Get("X-Trace-Id"))
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, incoming, string(b))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "<script>")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "<script>", resp.Header.Get("X-Trace-Id"))
}

func TestHealthMarker(t *testing.T) {
	rdb, _ := newRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing())
	app.Use(HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendString("{}") })

	for _, p := range []string{"/ok", "/ok", "/boom", "/health/json"} {
		resp, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
		if p == "/boom" {
			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		}
	}

	ctx := context.Background()
	total, err := rdb.Get(ctx, KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	errs, err := rdb.Get(ctx, KeyReqErrors).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, errs)

	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "/boom", entry["path"])
	assert.Equal(t, float64(500), entry["status"])
	assert.NotEmpty(t, entry["trace_id"])
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "short and stout", out["error"].(map[string]interface{})["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
