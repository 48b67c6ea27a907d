package schema

import (
	"rackops/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature exposes the schema check on the API.
type Feature struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewFeature creates the schema feature.
func NewFeature(db *gorm.DB, logger *zap.Logger) *Feature {
	return &Feature{db: db, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "schema"
}

// IsEnabled reports whether a database is available.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	app.Get("/schema", f.HandleCheck)
	return nil
}

// HandleCheck runs the schema check.
// @Summary Check Racktables Schema
// @Description Verifies the tables and columns read and written by rackops.
// @Tags schema
// @Produce json
// @Success 200 {object} Report "Schema report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schema [get]
func (f *Feature) HandleCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(f.logger, c)

	report, err := Check(c.Context(), f.db)
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Schema mismatch", zap.Strings("errors", report.Errors))
	}
	return c.JSON(report)
}
