package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fintrack/fintrack/internal/identity"
	"github.com/fintrack/fintrack/internal/middleware"
)

// RegisterIdentityRoutes exposes the acting identity behind the token gate.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, gate fiber.Handler, logger *slog.Logger) {
	r.Get("/me", gate, func(c *fiber.Ctx) error {
		uid, ok := middleware.UserID(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		user, err := ids.Get(c.UserContext(), uid)
		if errors.Is(err, identity.ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		if err != nil {
			logger.Error("identity.me failed", slog.Int64("user_id", int64(uid)), slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "failed to load user")
		}
		return c.JSON(fiber.Map{
			"userId":    user.ID,
			"login":     user.Login,
			"createdAt": user.CreatedAt,
		})
	})
}
