package roomblocks

import (
	"errors"

	"access-sync/core/cloudbeds"
	"access-sync/core/logger"
	"access-sync/feature/locks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler receives room block notifications.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the room block routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/room-block")
	group.Post("/created", h.HandleCreated)
	group.Post("/deleted", h.HandleDeleted)
}

// HandleCreated programs a code for a new room block.
// @Summary Room Block Created
// @Description Creates a temporary code on the room's lock for matching out-of-service blocks.
// @Tags room-block
// @Accept json
// @Produce json
// @Param event body cloudbeds.BlockCreated true "Room block"
// @Success 200 {object} map[string]any "Skipped"
// @Success 201 {object} map[string]any "Created"
// @Failure 400 {object} map[string]string "Malformed notification"
// @Failure 404 {object} map[string]string "No lock found for room"
// @Failure 502 {object} map[string]string "Lock provider failure"
// @Router /room-block/created [post]
func (h *Handler) HandleCreated(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var evt cloudbeds.BlockCreated
	if err := c.BodyParser(&evt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	res, err := h.service.Created(c.Context(), evt)
	if err != nil {
		return h.fail(c, l, err)
	}

	switch res.Status {
	case StatusCreated:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "code": res.Code})
	default:
		return c.JSON(fiber.Map{"skipped": true, "reason": res.Reason})
	}
}

// HandleDeleted removes the code of a deleted room block.
// @Summary Room Block Deleted
// @Description Deletes the block's code. A refused delete is retried by the periodic run.
// @Tags room-block
// @Accept json
// @Produce json
// @Param event body cloudbeds.BlockDeleted true "Room block"
// @Success 200 {object} map[string]any "Deleted or skipped"
// @Success 202 {object} map[string]any "Delete pending retry"
// @Failure 400 {object} map[string]string "Malformed notification"
// @Router /room-block/deleted [post]
func (h *Handler) HandleDeleted(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var evt cloudbeds.BlockDeleted
	if err := c.BodyParser(&evt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	res, err := h.service.Deleted(c.Context(), evt)
	if err != nil {
		return h.fail(c, l, err)
	}

	switch res.Status {
	case StatusDeleted:
		return c.JSON(fiber.Map{"success": true})
	case StatusPending:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "pending": true})
	default:
		return c.JSON(fiber.Map{"skipped": true, "reason": res.Reason})
	}
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, cloudbeds.ErrMalformedRecord):
		l.Warn("Rejected room block notification", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, locks.ErrLockNotFound):
		l.Warn("Room block without lock", zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No lock found for room"})
	case errors.Is(err, ErrProvider):
		l.Error("Room block code failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Room block notification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
