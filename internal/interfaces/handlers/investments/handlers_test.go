package investments

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	invsvc "multinvest-backend/internal/application/investments"
	"multinvest-backend/internal/application/projection"
	"multinvest-backend/internal/domain"
	"multinvest-backend/internal/infrastructure/database"
	"multinvest-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	app   *fiber.App
	db    *gorm.DB
	user  *domain.User
	admin *domain.User
	firm  *domain.Firm
}

func setup(t *testing.T) *env {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	u := &domain.User{Username: "jane", Email: "jane@example.com", PasswordHash: "x"}
	a := &domain.User{Username: "root", Email: "root@example.com", PasswordHash: "x", IsAdmin: true}
	f := &domain.Firm{Name: "Acme Estates"}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(f).Error)

	h := &Handlers{Service: &invsvc.Service{
		DB:        db,
		Projector: &projection.Calculator{Now: func() time.Time { return now }},
	}}
	app := fiber.New()
	// X-As picks the session user: "admin", "user" or nobody.
	app.Use(func(c *fiber.Ctx) error {
		switch c.Get("X-As") {
		case "user":
			middleware.SetSessionUser(c, middleware.SessionUser{UserID: u.UserID.String(), Role: u.Role()})
		case "admin":
			middleware.SetSessionUser(c, middleware.SessionUser{UserID: a.UserID.String(), Role: a.Role()})
		}
		return c.Next()
	})
	app.Post("/investments", h.Create)
	app.Get("/investments", h.List)
	app.Get("/admin/investments", h.ListAll)
	app.Patch("/admin/investments/:id/status", h.UpdateStatus)
	return &env{app: app, db: db, user: u, admin: a, firm: f}
}

func (e *env) call(t *testing.T, method, path, as string, payload interface{}) (int, map[string]interface{}) {
	var r io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("X-As", as)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode, decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func errMessage(out map[string]interface{}) string {
	m, _ := out["error"].(map[string]interface{})
	s, _ := m["message"].(string)
	return s
}

func TestCreate_Validation(t *testing.T) {
	e := setup(t)
	firm := e.firm.FirmID.String()
	cases := []struct {
		name    string
		payload map[string]interface{}
		status  int
	}{
		{"missing transaction", map[string]interface{}{"firm_id": firm, "amount": 10}, fiber.StatusBadRequest},
		{"zero amount", map[string]interface{}{"firm_id": firm, "transaction_id": "T", "amount": 0}, fiber.StatusBadRequest},
		{"negative amount", map[string]interface{}{"firm_id": firm, "transaction_id": "T", "amount": -5}, fiber.StatusBadRequest},
		{"huge exponent", map[string]interface{}{"firm_id": firm, "transaction_id": "T", "amount": json.Number("1e200000000")}, fiber.StatusBadRequest},
		{"over column size", map[string]interface{}{"firm_id": firm, "transaction_id": "T", "amount": "1e30"}, fiber.StatusBadRequest},
		{"bad firm id", map[string]interface{}{"firm_id": "x", "transaction_id": "T", "amount": 5}, fiber.StatusBadRequest},
		{"unknown firm", map[string]interface{}{"firm_id": uuid.NewString(), "transaction_id": "T", "amount": 5}, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := e.call(t, "POST", "/investments", "user", tc.payload)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestCreate_RequiresSession(t *testing.T) {
	e := setup(t)
	status, _ := e.call(t, "POST", "/investments", "", map[string]interface{}{"firm_id": e.firm.FirmID.String(), "transaction_id": "T", "amount": 5})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCreateListAndComplete(t *testing.T) {
	e := setup(t)
	status, out := e.call(t, "POST", "/investments", "user", map[string]interface{}{
		"firm_id": e.firm.FirmID.String(), "transaction_id": "TX-9", "amount": "1000",
	})
	require.Equal(t, fiber.StatusCreated, status)
	id := out["data"].(map[string]interface{})["investment_id"].(string)

	status, out = e.call(t, "PATCH", "/admin/investments/"+id+"/status", "admin", map[string]string{"status": "done"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, invsvc.ErrInvalidStatus.Error(), errMessage(out))

	status, _ = e.call(t, "PATCH", "/admin/investments/"+id+"/status", "admin", map[string]string{"status": "completed"})
	require.Equal(t, fiber.StatusOK, status)

	require.NoError(t, e.db.Model(&domain.Investment{}).Where("investment_id = ?", id).
		Update("created_at", now.Add(-61*24*time.Hour)).Error)

	status, out = e.call(t, "GET", "/investments", "user", nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "1100.00", row["projected_value"])
	assert.Equal(t, "Acme Estates", row["firm_name"])
	pass := out["metadata"].(map[string]interface{})["projection"].(map[string]interface{})
	assert.Equal(t, float64(1), pass["projected"])

	status, out = e.call(t, "GET", "/admin/investments?status=pending", "admin", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, out["data"])

	status, _ = e.call(t, "PATCH", "/admin/investments/"+uuid.NewString()+"/status", "admin", map[string]string{"status": "rejected"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCreate_FormEncoded(t *testing.T) {
	e := setup(t)
	form := "firm_id=" + e.firm.FirmID.String() + "&transaction_id=TX-F&amount=12.5"
	req := httptest.NewRequest("POST", "/investments", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-As", "user")
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
