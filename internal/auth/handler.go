package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fintrack/fintrack/internal/identity"
)

// Handler exposes the login endpoint.
type Handler struct {
	ids    *identity.Service
	issuer *Issuer
	logger *slog.Logger
}

// NewHandler wires the credential verifier to the token issuer.
func NewHandler(ids *identity.Service, issuer *Issuer, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, issuer: issuer, logger: logger}
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks credentials and returns a signed access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req identity.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, identity.ErrInvalidInput.Error())
	}

	userID, err := h.ids.Login(c.UserContext(), identity.Credentials{Login: req.Login, Password: req.Password})
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			authAttempts.WithLabelValues("invalid_credentials").Inc()
			return fiber.NewError(http.StatusUnauthorized, "Invalid credentials")
		}
		authAttempts.WithLabelValues("error").Inc()
		h.logger.Error("auth.login failed", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "failed to login")
	}

	token, err := h.issuer.Issue(userID)
	if err != nil {
		authAttempts.WithLabelValues("error").Inc()
		h.logger.Error("auth.login token issue failed", slog.Int64("user_id", int64(userID)), slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "failed to login")
	}

	authAttempts.WithLabelValues("success").Inc()
	h.logger.Info("auth.login completed", slog.Int64("user_id", int64(userID)))
	return c.Status(http.StatusOK).JSON(loginResponse{Token: token.Value, ExpiresAt: token.ExpiresAt.UTC()})
}
