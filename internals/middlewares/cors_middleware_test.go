package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginAllowed(t *testing.T) {
	exact := map[string]struct{}{"http://localhost:5173": {}}
	suffixes := []string{".vercel.app"}

	assert.True(t, OriginAllowed("http://localhost:5173", exact, suffixes))
	assert.True(t, OriginAllowed("https://garderie-web.vercel.app", exact, suffixes))
	assert.False(t, OriginAllowed("http://garderie-web.vercel.app", exact, suffixes))
	assert.False(t, OriginAllowed("https://.vercel.app", exact, suffixes))
	assert.False(t, OriginAllowed("https://evil.example.com", exact, suffixes))
}

func TestCorsMiddlewareEchoesAllowedOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(CorsMiddleware([]string{"*", "https://admin.garderie.tg", "*.vercel.app"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://preview.vercel.app")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://preview.vercel.app", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
