package support

import (
	"rackops/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the support report.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the support routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/support", h.HandleReport)
}

// HandleReport returns the maintenance status of physical servers.
// @Summary Support Report
// @Description Service tag, model, support end and hardware warranty end of every physical server that is not retired.
// @Tags support
// @Produce json
// @Success 200 {object} map[string]interface{} "Rows"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /support [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	rows, err := h.service.Rows(c.Context())
	if err != nil {
		l.Error("Support report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if c.Query("format") == "table" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return WriteTable(c.Response().BodyWriter(), rows)
	}
	return c.JSON(fiber.Map{"count": len(rows), "servers": rows})
}
