package machines

import (
	"errors"

	"rackops/core/inventory"
	"rackops/core/logger"
	"rackops/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventory lookups.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the lookup routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/machines")
	group.Get("/", h.HandleList)
	group.Get("/search/:pattern", h.HandleSearch)

	app.Get("/ips/:ip", h.HandleOwner)
	app.Get("/networks/:name/free", h.HandleFreeIP)
}

// HandleList returns the active machines.
// @Summary List Active Machines
// @Description Servers and VMs that are running and not tagged free, retired or to be retired.
// @Tags machines
// @Produce json
// @Success 200 {object} map[string]interface{} "Machines"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /machines [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	machines, err := h.service.List(c.Context())
	if err != nil {
		l.Error("Machine listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"count": len(machines), "machines": machines})
}

// HandleSearch returns the active machines matching a name pattern.
// @Summary Search Machines
// @Tags machines
// @Produce json
// @Param pattern path string true "Name regular expression, matched from the start"
// @Success 200 {object} map[string]interface{} "Machines"
// @Failure 400 {object} map[string]string "Invalid pattern"
// @Router /machines/search/{pattern} [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	pattern := c.Params("pattern")

	machines, err := h.service.Search(c.Context(), pattern)
	if err != nil {
		if errors.Is(err, inventory.ErrInvalidPattern) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Machine search failed", zap.String("pattern", pattern), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"count": len(machines), "machines": machines})
}

// HandleOwner returns the allocations of an address.
// @Summary Address Owner
// @Tags ips
// @Produce json
// @Param ip path string true "IPv4 address"
// @Success 200 {object} map[string]interface{} "Allocations"
// @Failure 400 {object} map[string]string "Invalid address"
// @Router /ips/{ip} [get]
func (h *Handler) HandleOwner(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	ip := c.Params("ip")

	allocs, err := h.service.Owners(c.Context(), ip)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidIPv4) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Address lookup failed", zap.String("ip", ip), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"ip": ip, "allocated": len(allocs) > 0, "allocations": allocs})
}

// HandleFreeIP returns the first free address of a network.
// @Summary Free Address
// @Tags ips
// @Produce json
// @Param name path string true "Network name"
// @Param offset query int false "First host offset to consider" default(1)
// @Success 200 {object} map[string]string "Free address"
// @Failure 404 {object} map[string]string "Unknown network"
// @Failure 409 {object} map[string]string "Network full"
// @Router /networks/{name}/free [get]
func (h *Handler) HandleFreeIP(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")
	offset := c.QueryInt("offset", 1)

	ip, err := h.service.FreeIP(c.Context(), name, offset)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"network": name, "ip": ip})
	case errors.Is(err, inventory.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, inventory.ErrNoFreeAddress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Free address lookup failed", zap.String("network", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
