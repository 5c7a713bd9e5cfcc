package route

import (
	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/features/users/auth/controller"
	"garderie_backend/internals/features/users/auth/service"
	"garderie_backend/internals/middlewares"
)

// AuthPublicRoutes mounts login, which is rate limited per client.
func AuthPublicRoutes(r fiber.Router, svc *service.Service) {
	ac := controller.NewAuthController(svc)
	r.Post("/auth/login", middlewares.LoginRateLimiter(), ac.Login)
}

// AuthProtectedRoutes expects the auth middleware to run first.
func AuthProtectedRoutes(r fiber.Router, svc *service.Service) {
	ac := controller.NewAuthController(svc)

	grp := r.Group("/auth")
	grp.Get("/me", ac.Me)
	grp.Put("/profile", ac.UpdateProfile)
	grp.Put("/change-password", ac.ChangePassword)
	grp.Post("/logout", ac.Logout)
}
