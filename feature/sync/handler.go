package sync

import (
	"errors"

	"access-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes reconciliation runs over HTTP.
type Handler struct {
	runner *Runner
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(runner *Runner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{runner: runner, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sync", h.HandleRun)
}

// HandleRun performs one reconciliation run and returns its reports.
// @Summary Run Reconciliation
// @Description Reads the reservation source and converges room, common-area and room block codes.
// @Tags sync
// @Produce json
// @Param dry_run query bool false "Report planned actions without changing anything"
// @Success 200 {object} sync.RunResult "Run result"
// @Failure 409 {object} map[string]string "Run already in progress"
// @Failure 502 {object} map[string]string "Reservation source unavailable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	dryRun := c.QueryBool("dry_run", false)

	res, err := h.runner.Run(c.Context(), dryRun)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSnapshot):
		l.Error("Reconciliation run aborted", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Reconciliation run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}
