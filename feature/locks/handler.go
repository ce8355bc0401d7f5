package locks

import (
	"errors"
	"strconv"

	"access-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the registry over HTTP.
type Handler struct {
	registry *Registry
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(registry *Registry, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// RegisterRoutes registers the lock routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/locks")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
}

// HandleList lists every provisioned lock.
// @Summary List Locks
// @Description Lists every lock in the registry with its category and room binding.
// @Tags locks
// @Produce json
// @Success 200 {array} locks.Lock "Locks"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /locks [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.registry.List(c.Context())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing locks failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if list == nil {
		list = []Lock{}
	}
	return c.JSON(list)
}

// HandleGet returns one lock.
// @Summary Get Lock
// @Tags locks
// @Produce json
// @Param id path int true "Lock ID"
// @Success 200 {object} locks.Lock "Lock"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /locks/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lock id"})
	}

	l, err := h.registry.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrLockNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		logger.WithRayID(h.logger, c).Error("Loading lock failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(l)
}
