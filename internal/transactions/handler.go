package transactions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fintrack/fintrack/internal/identity"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// UserResolver returns the acting user established by the token gate.
type UserResolver func(c *fiber.Ctx) (identity.UserID, bool)

// Handler exposes transaction HTTP endpoints.
type Handler struct {
	service *Service
	user    UserResolver
	logger  *slog.Logger
}

// NewHandler builds a transaction HTTP handler.
func NewHandler(service *Service, user UserResolver, logger *slog.Logger) *Handler {
	return &Handler{service: service, user: user, logger: logger}
}

type createRequest struct {
	Date string `json:"date"`
	Sum  int64  `json:"sum"`
	Note string `json:"note"`
}

type transactionResponse struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
	Sum  int64  `json:"sum"`
	Note string `json:"note"`
}

type summaryResponse struct {
	Count int64 `json:"count"`
	Total int64 `json:"total"`
}

func toResponse(tx Transaction) transactionResponse {
	return transactionResponse{ID: tx.ID, Date: tx.Date.Format(DateLayout), Sum: tx.Sum, Note: tx.Note}
}

// Create records a transaction for the acting user.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := h.actingUser(c)
	if err != nil {
		return err
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	}

	tx, err := h.service.Create(c.UserContext(), userID, Input{Date: date, Sum: req.Sum, Note: req.Note})
	if err != nil {
		return h.fail(err, "create")
	}
	h.logger.Info("transactions.create completed",
		slog.Int64("user_id", int64(userID)),
		slog.Int64("transaction_id", tx.ID),
	)
	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

// List returns the acting user's transactions, optionally bounded by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := h.actingUser(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	txs, err := h.service.List(c.UserContext(), userID, filter)
	if err != nil {
		return h.fail(err, "list")
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

// Get returns one of the acting user's transactions.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, err := h.actingUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	tx, err := h.service.Get(c.UserContext(), userID, id)
	if err != nil {
		return h.fail(err, "get")
	}
	return c.Status(http.StatusOK).JSON(toResponse(tx))
}

// Delete removes one of the acting user's transactions.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := h.actingUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return h.fail(err, "delete")
	}
	return c.SendStatus(http.StatusNoContent)
}

// Summary returns count and total of the acting user's transactions.
func (h *Handler) Summary(c *fiber.Ctx) error {
	userID, err := h.actingUser(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	summary, err := h.service.Summary(c.UserContext(), userID, filter)
	if err != nil {
		return h.fail(err, "summary")
	}
	return c.Status(http.StatusOK).JSON(summaryResponse{Count: summary.Count, Total: summary.Total})
}

func (h *Handler) actingUser(c *fiber.Ctx) (identity.UserID, error) {
	userID, ok := h.user(c)
	if !ok {
		return 0, fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return userID, nil
}

func (h *Handler) fail(err error, op string) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	default:
		h.logger.Error("transactions."+op+" failed", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "failed to "+op+" transaction")
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	}
	return id, nil
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	var filter Filter
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(bound.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Filter{}, fiber.NewError(http.StatusBadRequest, bound.name+" must be formatted as YYYY-MM-DD")
		}
		*bound.dst = &t
	}
	return filter, nil
}
