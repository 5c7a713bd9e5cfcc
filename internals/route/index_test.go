package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garderie_backend/internals/configs"
	"garderie_backend/internals/constants"
	"garderie_backend/internals/testutil"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "Admin", "admin@garderie.test", constants.RoleAdmin)
	testutil.CreateUser(t, db, "Ama", "ama@garderie.test", constants.RoleStaff)

	app := fiber.New()
	SetupRoutes(app, Deps{
		DB:  db,
		Log: zap.NewNop(),
		Config: &configs.Config{
			AppEnv: "test",
			Auth: configs.AuthConfig{
				JWTSecret:        "route-test-secret",
				JWTExpire:        time.Hour,
				MaxLoginAttempts: 5,
				LockDuration:     time.Hour,
			},
			Receipts: configs.ReceiptConfig{SequenceStrategy: "counter"},
		},
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func loginAs(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"password123"}`)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	status, body := do(t, app, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app := newApp(t)
	status, _ := do(t, app, http.MethodGet, "/api/children", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodGet, "/api/auth/me", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginMeAndLogout(t *testing.T) {
	app := newApp(t)
	token := loginAs(t, app, "ama@garderie.test")

	status, body := do(t, app, http.MethodGet, "/api/auth/me", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ama@garderie.test", body["data"].(map[string]any)["email"])

	status, _ = do(t, app, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodGet, "/api/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestWrongPasswordIsUnauthorized(t *testing.T) {
	app := newApp(t)
	status, body := do(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"ama@garderie.test","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestUserAdminNeedsCapability(t *testing.T) {
	app := newApp(t)

	staff := loginAs(t, app, "ama@garderie.test")
	status, _ := do(t, app, http.MethodGet, "/api/users", staff, "")
	assert.Equal(t, http.StatusForbidden, status)

	admin := loginAs(t, app, "admin@garderie.test")
	status, body := do(t, app, http.MethodGet, "/api/users", admin, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, _ = do(t, app, http.MethodPost, "/api/menus", staff, `{"week_start_date":"2024-03-11"}`)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCreateChildAndMarkAttendance(t *testing.T) {
	app := newApp(t)
	token := loginAs(t, app, "ama@garderie.test")

	status, body := do(t, app, http.MethodPost, "/api/children", token, `{
		"first_name":"Kossi","last_name":"Agbo","date_of_birth":"2021-04-02",
		"class":"petite_section","payment_mode":"daily",
		"parent":{"name":"Yawa Agbo","phone":"+22890112233"}}`)
	require.Equal(t, http.StatusCreated, status, body)
	childID := body["data"].(map[string]any)["id"].(string)

	status, body = do(t, app, http.MethodPost, "/api/attendance", token, `{"child_id":"`+childID+`"}`)
	require.Equal(t, http.StatusCreated, status, body)

	status, body = do(t, app, http.MethodPost, "/api/attendance", token, `{"child_id":"`+childID+`"}`)
	assert.Equal(t, http.StatusConflict, status, body)
}
