package schedule

import (
	"errors"
	"time"

	"guesthub/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the reservation table.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(engine *Engine, log *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: log}
}

// RegisterRoutes registers the schedule routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/schedules")
	group.Get("/", h.HandleList)
	group.Post("/reconcile", h.HandleReconcile)
	group.Put("/:id/late-checkout", h.HandleSetLateCheckout)
	group.Delete("/:id/late-checkout", h.HandleRemoveLateCheckout)
}

// HandleList returns the current reservation table.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"schedules": h.engine.Entries()})
}

// HandleReconcile forces an immediate reconciliation pass.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Forced reconciliation requested")

	if err := h.engine.ForceReconcile(c.Context()); err != nil {
		l.Error("Forced reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"status":    "reconciled",
		"schedules": h.engine.Entries(),
	})
}

// lateCheckoutRequest is the body of a late-checkout override.
type lateCheckoutRequest struct {
	// Time is the new check-out instant, RFC 3339.
	Time time.Time `json:"time"`
}

// HandleSetLateCheckout records a late-checkout override for a reservation.
func (h *Handler) HandleSetLateCheckout(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	id := c.Params("id")

	var req lateCheckoutRequest
	if err := c.BodyParser(&req); err != nil || req.Time.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body must contain a valid RFC 3339 time"})
	}

	if err := h.engine.SetLateCheckout(id, req.Time); err != nil {
		switch {
		case errors.Is(err, ErrUnknownReservation):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrInvalidOverride):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			l.Error("Failed to set late checkout", zap.String("reservation", id), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	l.Info("Late checkout set", zap.String("reservation", id), zap.Time("time", req.Time))
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleRemoveLateCheckout deletes a reservation's late-checkout override.
func (h *Handler) HandleRemoveLateCheckout(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	id := c.Params("id")

	if err := h.engine.RemoveLateCheckout(id); err != nil {
		l.Error("Failed to remove late checkout", zap.String("reservation", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
