package cmd

import (
	"context"
	"fmt"

	"guesthub/core/calendar"
	"guesthub/core/config"
	"guesthub/core/hub"
	"guesthub/core/logger"
	"guesthub/core/store"
	"guesthub/core/timer"
	"guesthub/feature/locks"
	"guesthub/feature/modes"
	"guesthub/feature/schedule"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reconcileCmd runs a single reconciliation pass and prints the resulting
// reservation table. Useful for checking feed parsing and extraction without
// leaving a server running; no device action fires because the process exits
// before any timer does.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass and print the reservation table",
	Long: `Fetches the configured reservation feeds, runs a single reconciliation
pass and prints the resulting reservation table. Stale late-checkout overrides
are pruned from the store as part of the pass.`,
	RunE: runReconcile,
}

func init() {
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Schedule.Timezone, err)
	}

	st, err := store.Open(cfg.Store, l)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var sources calendar.MultiSource
	if cfg.Calendar.AirbnbURL != "" {
		sources = append(sources, calendar.NewFeedSource(cfg.Calendar.AirbnbURL, "airbnb", cfg.Calendar, loc, l))
	}
	if cfg.Calendar.VrboURL != "" {
		sources = append(sources, calendar.NewFeedSource(cfg.Calendar.VrboURL, "vrbo", cfg.Calendar, loc, l))
	}
	if len(sources) == 0 {
		return fmt.Errorf("no calendar feeds configured")
	}

	client := hub.NewClient(cfg.Hub)
	exec := schedule.NewExecutor(
		locks.NewProgrammer(client, cfg.Locks, l),
		modes.NewController(client, cfg.Modes, l, nil),
		cfg.Schedule, l,
	)

	engine, err := schedule.NewEngine(sources, timer.NewScheduler(l, nil), exec, st, cfg.Schedule, l, nil)
	if err != nil {
		return fmt.Errorf("failed to build reconciliation engine: %w", err)
	}

	l.Info("Running reconciliation pass...")
	if err := engine.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	entries := engine.Entries()
	l.Info("Reconciliation complete", zap.Int("reservations", len(entries)))
	for _, e := range entries {
		fields := []zap.Field{
			zap.String("reservation", e.ReservationID),
			zap.String("platform", e.Platform),
			zap.Time("check_in", e.Start),
			zap.Time("check_out", e.End),
			zap.Bool("late_checkout", e.LateCheckout),
		}
		if e.Arriving != nil {
			fields = append(fields, zap.Time("arriving_soon", *e.Arriving))
		}
		l.Info("Reservation", fields...)
	}
	return nil
}
