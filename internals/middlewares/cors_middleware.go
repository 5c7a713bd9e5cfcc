package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://127.0.0.1:5500",
}

// CorsMiddleware allows the configured origins. An entry like
// "*.vercel.app" matches any subdomain over https.
func CorsMiddleware(origins []string) fiber.Handler {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	exact := make(map[string]struct{}, len(origins))
	var list, suffixes []string
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case o == "", o == "*": // a bare wildcard is incompatible with credentials
		case strings.HasPrefix(o, "*."):
			suffixes = append(suffixes, o[1:])
		default:
			if _, dup := exact[o]; !dup {
				exact[o] = struct{}{}
				list = append(list, o)
			}
		}
	}
	if len(list) == 0 {
		list = defaultOrigins
	}

	return cors.New(cors.Config{
		AllowOrigins: strings.Join(list, ","),
		AllowOriginsFunc: func(origin string) bool {
			return OriginAllowed(origin, exact, suffixes)
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
		AllowCredentials: true,
	})
}

func OriginAllowed(origin string, exact map[string]struct{}, suffixes []string) bool {
	if _, ok := exact[origin]; ok {
		return true
	}
	if !strings.HasPrefix(origin, "https://") {
		return false
	}
	host := strings.TrimPrefix(origin, "https://")
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) && len(host) > len(s) {
			return true
		}
	}
	return false
}
