package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"guesthub/core/calendar"
	"guesthub/core/config"
	"guesthub/core/hub"
	"guesthub/core/loader"
	"guesthub/core/logger"
	"guesthub/core/middleware/auth"
	"guesthub/core/middleware/rayid"
	"guesthub/core/store"
	"guesthub/core/timer"
	"guesthub/feature/locks"
	"guesthub/feature/modes"
	"guesthub/feature/schedule"
	"guesthub/feature/visits"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the guesthub server",
	Long:  `Starts the reconciliation engine, the visit scheduler and the HTTP API.`,
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

		loc, err := cfg.Schedule.Location()
		if err != nil {
			logg.Fatal("Invalid timezone", zap.String("timezone", cfg.Schedule.Timezone), zap.Error(err))
		}

		// 3. Open the visit/override store
		st, err := store.Open(cfg.Store, logg)
		if err != nil {
			logg.Fatal("Failed to open store", zap.Error(err))
		}
		defer st.Close()

		// 4. Hub client and the actuators built on it
		client := hub.NewClient(cfg.Hub)
		programmer := locks.NewProgrammer(client, cfg.Locks, logg)
		controller := modes.NewController(client, cfg.Modes, logg, nil)

		// 5. Timers and reservation feeds
		sched := timer.NewScheduler(logg, nil)
		var sources calendar.MultiSource
		if cfg.Calendar.AirbnbURL != "" {
			sources = append(sources, calendar.NewFeedSource(cfg.Calendar.AirbnbURL, "airbnb", cfg.Calendar, loc, logg))
		}
		if cfg.Calendar.VrboURL != "" {
			sources = append(sources, calendar.NewFeedSource(cfg.Calendar.VrboURL, "vrbo", cfg.Calendar, loc, logg))
		}
		if len(sources) == 0 {
			logg.Warn("No calendar feeds configured; the reservation table will stay empty")
		}

		// 6. Reconciliation engine
		exec := schedule.NewExecutor(programmer, controller, cfg.Schedule, logg)
		engine, err := schedule.NewEngine(sources, sched, exec, st, cfg.Schedule, logg, nil)
		if err != nil {
			logg.Fatal("Failed to build reconciliation engine", zap.Error(err))
		}

		// 7. Manual visit scheduler
		names := visits.ModeNames{
			CheckIn:      cfg.Schedule.CheckinMode,
			CheckOut:     cfg.Schedule.CheckoutMode,
			ArrivingSoon: cfg.Schedule.ArrivingSoonMode,
		}
		visitSvc := visits.NewService(st, sched, programmer, controller, names, logg, nil)
		if err := visitSvc.Initialize(); err != nil {
			logg.Fatal("Failed to initialize visit scheduler", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go engine.Run(ctx)

		// 8. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 9. Load Features
		mgr := loader.NewManager()
		mgr.Register(schedule.NewFeature(engine, logg))
		mgr.Register(visits.NewFeature(visitSvc, cfg.Schedule.Timezone, logg))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
