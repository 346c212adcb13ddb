package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/identity"
)

const (
	userIDKey    = "user_id"
	bearerScheme = "Bearer"
)

// TokenVerifier validates an access token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (identity.UserID, error)
}

// TokenGate admits a request only when it carries a valid bearer token. The
// acting user id is stored for downstream handlers; every failure yields the
// same 401 and the cause is only logged.
func TokenGate(verifier TokenVerifier, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authenticate(verifier, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			reason := auth.Reason(err)
			gateRejections.WithLabelValues(reason).Inc()
			logger.Debug("token rejected",
				slog.String("reason", reason),
				slog.String("path", c.Path()),
				slog.String("request_id", RequestIDFrom(c)),
			)
			return fiber.NewError(http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

func authenticate(verifier TokenVerifier, header string) (identity.UserID, error) {
	token, err := bearerToken(header)
	if err != nil {
		return 0, err
	}
	return verifier.Verify(token)
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", auth.ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", auth.ErrMissingToken
	}
	return token, nil
}

// UserID returns the identity established by TokenGate.
func UserID(c *fiber.Ctx) (identity.UserID, bool) {
	id, ok := c.Locals(userIDKey).(identity.UserID)
	return id, ok && id > 0
}
