package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	pendingMarker        = "__pending__"
	cacheTimeout         = 2 * time.Second
)

// replay is the stored copy of a successful response.
type replay struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Idempotency replays the stored response when an unsafe request repeats an
// Idempotency-Key. Keys are scoped to the acting user, so one user can never
// receive another's cached response. Requests without the header pass through
// and failed responses are not stored, leaving the key free for a retry.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isSafeMethod(c.Method()) {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(idempotencyKeyHeader))
		if key == "" {
			return c.Next()
		}

		cacheKey := idempotencyCacheKey(c, key)
		log := logger.With(slog.String("idempotency_key", key), slog.String("request_id", RequestIDFrom(c)))

		ctx, cancel := context.WithTimeout(c.UserContext(), cacheTimeout)
		defer cancel()

		stored, err := cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			return sendReplay(c, stored, log)
		case !errors.Is(err, redis.Nil):
			log.Error("idempotency lookup failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
		}

		reserved, err := cache.SetNX(ctx, cacheKey, pendingMarker, ttl).Result()
		if err != nil {
			log.Error("idempotency reservation failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
		}
		if !reserved {
			return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
		}

		if err := c.Next(); err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			forget(cache, cacheKey)
			return err
		}

		if err := remember(cache, cacheKey, capture(c), ttl); err != nil {
			log.Error("failed to persist idempotent response", slog.Any("error", err))
			forget(cache, cacheKey)
		}
		return nil
	}
}

func isSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

func idempotencyCacheKey(c *fiber.Ctx, key string) string {
	owner := "anonymous"
	if userID, ok := UserID(c); ok {
		owner = fmt.Sprintf("user:%d", userID)
	}
	return idempotencyPrefix + owner + ":" + c.Method() + ":" + c.Path() + ":" + key
}

func sendReplay(c *fiber.Ctx, stored string, log *slog.Logger) error {
	if stored == pendingMarker {
		return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
	}

	var r replay
	if err := json.Unmarshal([]byte(stored), &r); err != nil {
		log.Warn("failed to decode stored idempotent response", slog.Any("error", err))
		return fiber.NewError(fiber.StatusConflict, "duplicate request")
	}
	for header, value := range r.Headers {
		if !replayable(header) {
			continue
		}
		c.Set(header, value)
	}
	return c.Status(r.Status).SendString(r.Body)
}

func capture(c *fiber.Ctx) replay {
	r := replay{
		Status:  c.Response().StatusCode(),
		Body:    string(c.Response().Body()),
		Headers: map[string]string{},
	}
	c.Response().Header.VisitAll(func(k, v []byte) {
		if header := string(k); replayable(header) {
			r.Headers[header] = string(v)
		}
	})
	return r
}

// replayable reports whether a stored header may be copied onto a replay.
// Per-request headers belong to the request being answered.
func replayable(header string) bool {
	return !strings.EqualFold(header, fiber.HeaderContentLength) &&
		!strings.EqualFold(header, requestIDHeader)
}

func remember(cache *redis.Client, cacheKey string, r replay, ttl time.Duration) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	return cache.Set(ctx, cacheKey, payload, ttl).Err()
}

func forget(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey)
}
