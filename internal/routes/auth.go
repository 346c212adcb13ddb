package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/identity"
)

// RegisterAuthRoutes wires the public credential endpoints.
func RegisterAuthRoutes(r fiber.Router, ids *identity.Handler, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/register", ids.Register)
	group.Post("/login", h.Login)
}
