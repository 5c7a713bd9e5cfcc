package controller

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

	"garderie_backend/internals/constants"
	childModel "garderie_backend/internals/features/children/children/model"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/testutil"
)

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestMarkEndpointReturnsConflictOnSecondMark(t *testing.T) {
	db := testutil.NewDB(t)
	staff := testutil.CreateUser(t, db, "Tata Ama", "ama@garderie.test", constants.RoleStaff)
	child := testutil.CreateChild(t, db, "Awa", childModel.ClassPetiteSection)

	ctl := NewAttendanceController(db, zap.NewNop())
	ctl.Service.Now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		helperAuth.SetActor(c, helperAuth.Actor{ID: staff.ID, Name: staff.Name, Role: staff.Role})
		return c.Next()
	})
	app.Post("/attendance", ctl.Mark)
	app.Get("/attendance", ctl.List)
	app.Delete("/attendance/:id", ctl.Delete)

	body := `{"child_id":"` + child.ID.String() + `"}`

	status, env := doJSON(t, app, http.MethodPost, "/attendance", body)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.True(t, env.Success)

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "present", created.Status)

	status, env = doJSON(t, app, http.MethodPost, "/attendance", body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.ErrorCode)
	assert.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodGet, "/attendance?date=2024-03-01", "")
	require.Equal(t, fiber.StatusOK, status)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)

	status, _ = doJSON(t, app, http.MethodGet, "/attendance?date=yesterday", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	// staff cannot delete marks
	status, env = doJSON(t, app, http.MethodDelete, "/attendance/"+created.ID, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.ErrorCode)
}

func TestMarkEndpointRejectsBadBody(t *testing.T) {
	db := testutil.NewDB(t)
	staff := testutil.CreateUser(t, db, "Tata", "tata@garderie.test", constants.RoleStaff)
	ctl := NewAttendanceController(db, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		helperAuth.SetActor(c, helperAuth.Actor{ID: staff.ID, Role: staff.Role})
		return c.Next()
	})
	app.Post("/attendance", ctl.Mark)

	status, env := doJSON(t, app, http.MethodPost, "/attendance", `{"child_id":"nope"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
}
