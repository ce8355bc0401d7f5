package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"access-sync/core/config"
	"access-sync/core/loader"
	"access-sync/core/logger"
	"access-sync/core/middleware/auth"
	"access-sync/core/middleware/rayid"

	"access-sync/feature/locks"
	"access-sync/feature/roomblocks"
	"access-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "access-sync/docs/swagger"
)

// @title Access Sync API
// @version 1.0
// @description Reconciles smart-lock access codes with property reservations.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the access sync server",
	Long:  `Starts the HTTP server, the room block webhooks and the periodic reconciliation schedule.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Wire the engine (database, clients, reconcilers)
		a, err := buildApp(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to initialize", zap.Error(err))
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(locks.NewFeature(a.registry, logg.Named("locks")))
		mgr.Register(roomblocks.NewFeature(a.blocks, logg.Named("roomblocks")))
		mgr.Register(sync.NewFeature(a.runner, logg.Named("sync")))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with ray id
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("took", time.Since(start)),
			}
			if err != nil {
				l.Error("Request error", append(fields, zap.Error(err))...)
				return err
			}
			l.Info("Request handled", fields...)
			return nil
		})

		// 3. Public routes
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (Protect API). Webhooks may pass the key as ?api_key=.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Public: []string{"/health"}}))
		if !cfg.Server.AuthEnabled() {
			logg.Warn("API key not set, every route is public")
		}

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Periodic reconciliation
		var scheduler *sync.Scheduler
		if cfg.Schedule.Enabled {
			scheduler, err = sync.NewScheduler(a.runner, cfg.Schedule, logg.Named("schedule"))
			if err != nil {
				logg.Fatal("Failed to schedule reconciliation", zap.Error(err))
			}
			scheduler.Start()
			logg.Info("Reconciliation scheduled", zap.String("spec", cfg.Schedule.Spec))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		timeout := time.Duration(cfg.Server.ShutdownSeconds) * time.Second
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				logg.Warn("Scheduled run still in progress at shutdown", zap.Error(err))
			}
		}
		_ = app.ShutdownWithContext(ctx)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
