package cmd

import (
	"time"

	"rackops/core/config"
	"rackops/core/inventory"
	"rackops/core/loader"
	"rackops/core/logger"
	"rackops/core/middleware/auth"
	"rackops/core/middleware/rayid"
	"rackops/feature/machines"
	"rackops/feature/schema"
	"rackops/feature/support"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title rackops API
// @version 1.0
// @description Read-only lookups in the Racktables inventory.
// @host localhost:8080
// @BasePath /

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inventory lookup API",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(e.logger)

		db, err := e.connect()
		if err != nil {
			return err
		}
		defer e.close(db)

		app, loaded, err := newApp(e.cfg, e.logger, db)
		if err != nil {
			return err
		}
		e.logger.Info("Features loaded", zap.Strings("features", loaded))

		errc := make(chan error, 1)
		go func() {
			e.logger.Info("Starting server", zap.String("port", e.cfg.Server.Port))
			errc <- app.Listen(e.cfg.Server.Address())
		}()

		select {
		case err := <-errc:
			return err
		case <-cmd.Context().Done():
		}

		e.logger.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			e.logger.Warn("Shutdown incomplete", zap.Error(err))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// newApp builds the fiber application with its middleware and features.
func newApp(cfg *config.Config, logg *zap.Logger, db *gorm.DB) (*fiber.App, []string, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	store := inventory.New(db)
	mgr.Register(machines.NewFeature(store, logg, cfg.Server.CacheTTL()))
	mgr.Register(support.NewFeature(store, logg))
	mgr.Register(schema.NewFeature(db, logg))

	// RayID first so every log line below carries it
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		start := time.Now()
		err := c.Next()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			l.Error("Request error", append(fields, zap.Error(err))...)
		} else {
			l.Info("Request", fields...)
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return nil, nil, err
	}
	return app, loaded, nil
}
