package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multinvest-backend/internal/application/projection"
	"multinvest-backend/internal/config"
	"multinvest-backend/internal/domain"
	"multinvest-backend/internal/infrastructure/database"
	"multinvest-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var clock = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	rdb *redis.Client
}

func setup(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	_, err = database.Seed(context.Background(), db, database.SeedInput{})
	require.NoError(t, err)
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	app := NewApp(Deps{
		DB:        db,
		Rdb:       rdb,
		Config:    &config.Config{Env: "test", SessionSecret: "router-secret", HealthAdminKey: "k"},
		Projector: &projection.Calculator{Now: func() time.Time { return clock }},
	})
	return &testEnv{app: app, db: db, rdb: rdb}
}

func (e *testEnv) do(t *testing.T, method, path, cookie string, body interface{}) (*http.Response, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func cookieOf(resp *http.Response) string {
	for _, v := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(v, middleware.SessionCookieName+"=") {
			return strings.SplitN(v, ";", 2)[0]
		}
	}
	return ""
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	resp, _ := e.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	c := cookieOf(resp)
	require.NotEmpty(t, c)
	return c
}

func (e *testEnv) signup(t *testing.T, username, email string) string {
	resp, _ := e.do(t, "POST", "/api/v1/auth/signup", "", map[string]string{
		"username": username, "email": email, "password": "Passw0rdX", "confirm": "Passw0rdX",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return cookieOf(resp)
}

func data(out map[string]interface{}) map[string]interface{} {
	m, _ := out["data"].(map[string]interface{})
	return m
}

func list(out map[string]interface{}) []interface{} {
	l, _ := out["data"].([]interface{})
	return l
}

func TestInvestmentLifecycleProjectsOnDashboard(t *testing.T) {
	e := setup(t)
	investor := e.signup(t, "jane", "jane@example.com")
	admin := e.login(t, database.DefaultAdminEmail, database.DefaultAdminPassword)

	resp, out := e.do(t, "GET", "/api/v1/firms", investor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	firms := list(out)
	require.Len(t, firms, len(database.DefaultFirms))
	firmID := firms[0].(map[string]interface{})["firm_id"].(string)

	resp, out = e.do(t, "POST", "/api/v1/investments", investor, map[string]interface{}{
		"firm_id": firmID, "transaction_id": "TX-1", "amount": 1000,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	invID := data(out)["investment_id"].(string)
	assert.Equal(t, "pending", data(out)["status"])

	resp, _ = e.do(t, "PATCH", "/api/v1/admin/investments/"+invID+"/status", admin, map[string]string{"status": "completed"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, "PATCH", "/api/v1/admin/investments/"+invID+"/status", admin, map[string]string{"status": "rejected"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	require.NoError(t, e.db.Model(&domain.Investment{}).
		Where("investment_id = ?", invID).
		Update("created_at", clock.Add(-90*24*time.Hour)).Error)

	resp, out = e.do(t, "GET", "/api/v1/dashboard", investor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	d := data(out)
	assert.Equal(t, "1000.00", d["completed_total"])
	assert.Equal(t, "1050.00", d["projected_return"])
	invs := d["investments"].([]interface{})
	require.Len(t, invs, 1)
	row := invs[0].(map[string]interface{})
	assert.Equal(t, "1150.00", row["projected_value"])
	assert.Equal(t, "1000.00", row["amount"])
	assert.NotEmpty(t, row["firm_name"])

	resp, out = e.do(t, "GET", "/api/v1/investments", investor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1150.00", list(out)[0].(map[string]interface{})["projected_value"])
}

func TestPendingInvestmentIsNotProjected(t *testing.T) {
	e := setup(t)
	investor := e.signup(t, "sam", "sam@example.com")
	_, out := e.do(t, "GET", "/api/v1/firms", investor, nil)
	firmID := list(out)[0].(map[string]interface{})["firm_id"].(string)

	resp, out := e.do(t, "POST", "/api/v1/investments", investor, map[string]interface{}{
		"firm_id": firmID, "transaction_id": "TX-2", "amount": "500.004",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	invID := data(out)["investment_id"].(string)
	require.NoError(t, e.db.Model(&domain.Investment{}).
		Where("investment_id = ?", invID).
		Update("created_at", clock.Add(-400*24*time.Hour)).Error)

	_, out = e.do(t, "GET", "/api/v1/investments", investor, nil)
	row := list(out)[0].(map[string]interface{})
	assert.Equal(t, "500.00", row["projected_value"])
}

func TestWithdrawalFlow(t *testing.T) {
	e := setup(t)
	investor := e.signup(t, "jane", "jane@example.com")
	admin := e.login(t, database.DefaultAdminEmail, database.DefaultAdminPassword)

	wallet := "0x1234567890abcdef"
	resp, _ := e.do(t, "POST", "/api/v1/withdrawals", investor, map[string]interface{}{"wallet_address": wallet, "amount": 10})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var u domain.User
	require.NoError(t, e.db.Where("email = ?", "jane@example.com").First(&u).Error)
	resp, out := e.do(t, "PATCH", "/api/v1/admin/users/"+u.UserID.String()+"/balance", admin, map[string]interface{}{"delta": "100.00", "note": "wire"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "100.00", data(out)["user"].(map[string]interface{})["balance"])

	resp, out = e.do(t, "POST", "/api/v1/withdrawals", investor, map[string]interface{}{"wallet_address": wallet, "amount": "40"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	wid := data(out)["withdrawal_id"].(string)

	resp, _ = e.do(t, "PATCH", "/api/v1/admin/withdrawals/"+wid+"/status", admin, map[string]string{"status": "approved"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out = e.do(t, "GET", "/api/v1/users/me", investor, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "60.00", data(out)["user"].(map[string]interface{})["balance"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := setup(t)
	investor := e.signup(t, "jane", "jane@example.com")

	resp, _ := e.do(t, "GET", "/api/v1/admin/investments", investor, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, "POST", "/api/v1/admin/firms", investor, map[string]string{"name": "Nope"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, "GET", "/api/v1/dashboard", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminCreatesFirm(t *testing.T) {
	e := setup(t)
	admin := e.login(t, database.DefaultAdminEmail, database.DefaultAdminPassword)
	resp, out := e.do(t, "POST", "/api/v1/admin/firms", admin, map[string]string{"name": "Harbor Lofts"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Harbor Lofts", data(out)["name"])

	resp, out = e.do(t, "GET", "/api/v1/firms", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, list(out), len(database.DefaultFirms)+1)
}

func TestHealthJSON(t *testing.T) {
	e := setup(t)
	resp, out := e.do(t, "GET", "/health/json", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "multinvest-api", out["service"])
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
}
