package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	authModel "garderie_backend/internals/features/users/auth/model"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/testutil"
)

const secret = "test-secret"

func newApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(db, secret))
	app.Get("/me", func(c *fiber.Ctx) error {
		a, err := helperAuth.GetActor(c)
		if err != nil {
			return err
		}
		return c.SendString(a.Role + ":" + a.Name)
	})
	app.Delete("/users/:id", RequireCapability(constants.CapManageUsers, "manage users"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/admin", OnlyRoles("", constants.AdminOnly...), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func issue(t *testing.T, u *userModel.UserModel, ttl time.Duration) string {
	t.Helper()
	tok, _, err := helper.IssueAccessToken(secret, u.ID, u.Role, u.Name, ttl, time.Now())
	require.NoError(t, err)
	return tok
}

func TestAuthMiddlewareResolvesActor(t *testing.T) {
	db := testutil.NewDB(t)
	staff := testutil.CreateUser(t, db, "Tata Ama", "ama@garderie.test", constants.RoleStaff)
	admin := testutil.CreateUser(t, db, "Directrice", "dir@garderie.test", constants.RoleAdmin)
	app := newApp(db)

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", "not-a-jwt"))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", issue(t, staff, -time.Minute)))

	staffTok := issue(t, staff, time.Hour)
	adminTok := issue(t, admin, time.Hour)
	assert.Equal(t, fiber.StatusOK, call(t, app, "GET", "/me", staffTok))

	assert.Equal(t, fiber.StatusForbidden, call(t, app, "DELETE", "/users/x", staffTok))
	assert.Equal(t, fiber.StatusNoContent, call(t, app, "DELETE", "/users/x", adminTok))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "GET", "/admin", staffTok))
	assert.Equal(t, fiber.StatusNoContent, call(t, app, "GET", "/admin", adminTok))
}

func TestAuthMiddlewareRejectsRevokedAndInactive(t *testing.T) {
	db := testutil.NewDB(t)
	staff := testutil.CreateUser(t, db, "Tata Ama", "ama@garderie.test", constants.RoleStaff)
	other := testutil.CreateUser(t, db, "Tata Esi", "esi@garderie.test", constants.RoleStaff)
	app := newApp(db)

	tok := issue(t, staff, time.Hour)
	require.NoError(t, db.Create(&authModel.TokenBlacklist{
		Token:     helper.TokenDigest(secret, tok),
		ExpiredAt: time.Now().Add(time.Hour),
	}).Error)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", tok))

	otherTok := issue(t, other, time.Hour)
	require.NoError(t, db.Model(other).Update("is_active", false).Error)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", otherTok))
}
