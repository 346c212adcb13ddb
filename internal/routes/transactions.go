package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fintrack/fintrack/internal/transactions"
)

// RegisterTransactionRoutes wires the protected transaction endpoints. The
// idempotency handler is optional.
func RegisterTransactionRoutes(r fiber.Router, h *transactions.Handler, gate fiber.Handler, idempotency fiber.Handler) {
	group := r.Group("/transactions", gate)
	if idempotency != nil {
		group.Post("/", idempotency, h.Create)
	} else {
		group.Post("/", h.Create)
	}
	group.Get("/", h.List)
	group.Get("/summary", h.Summary)
	group.Get("/:id", h.Get)
	group.Delete("/:id", h.Delete)
}
