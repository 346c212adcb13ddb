package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// CredentialsRequest is the JSON body accepted by register and login.
type CredentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  UserID `json:"userId"`
}

// Register handles user sign-up.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, ErrInvalidInput.Error())
	}

	id, err := h.service.Register(c.UserContext(), Credentials{Login: req.Login, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, ErrInvalidInput.Error())
		case errors.Is(err, ErrDuplicateLogin):
			return fiber.NewError(http.StatusConflict, ErrDuplicateLogin.Error())
		default:
			h.logger.Error("identity.register failed", slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "failed to register user")
		}
	}

	h.logger.Info("identity.register completed",
		slog.Int64("user_id", int64(id)),
		slog.String("login", req.Login),
	)
	return c.Status(http.StatusOK).JSON(registerResponse{Message: "User registered successfully", UserID: id})
}
