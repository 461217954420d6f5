package visits

import (
	"errors"

	"guesthub/core/logger"
	"guesthub/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for manual visits.
type Handler struct {
	service  *Service
	timezone string
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, timezone string, log *zap.Logger) *Handler {
	return &Handler{service: service, timezone: timezone, logger: log}
}

// RegisterRoutes registers the visit routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/visits")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleAdd)
	group.Delete("/:id", h.HandleRemove)

	// The UI needs the property timezone to render visit times.
	app.Get("/timezone", h.HandleTimezone)
}

// HandleList returns all persisted visits.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	visits, err := h.service.List()
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to list visits", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(visits)
}

// HandleAdd persists and schedules a new visit.
func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var visit store.Visit
	if err := c.BodyParser(&visit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid visit body"})
	}

	added, err := h.service.Add(visit)
	if err != nil {
		l.Error("Failed to add visit", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Visit added", zap.String("visit", added.ID))
	return c.JSON(added)
}

// HandleRemove deletes a visit and cancels its timers.
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	id := c.Params("id")

	if err := h.service.Remove(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "visit not found"})
		}
		l.Error("Failed to remove visit", zap.String("visit", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleTimezone returns the configured property timezone.
func (h *Handler) HandleTimezone(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"timezone": h.timezone})
}
