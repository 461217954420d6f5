package schedule

import (
	"context"

	"guesthub/feature/locks"
	"guesthub/feature/modes"

	"go.uber.org/zap"
)

// Executor maps lifecycle transitions onto the lock programmer and the mode
// controller. Every sub-action is best-effort: a lock failure never blocks
// the mode change and vice versa.
type Executor struct {
	locks            *locks.Programmer
	modes            *modes.Controller
	checkinMode      string
	checkoutMode     string
	arrivingSoonMode string
	logger           *zap.Logger
}

// NewExecutor creates an action executor.
func NewExecutor(programmer *locks.Programmer, controller *modes.Controller, cfg Config, logger *zap.Logger) *Executor {
	return &Executor{
		locks:            programmer,
		modes:            controller,
		checkinMode:      cfg.CheckinMode,
		checkoutMode:     cfg.CheckoutMode,
		arrivingSoonMode: cfg.ArrivingSoonMode,
		logger:           logger,
	}
}

// CheckIn programs the guest code and sets the configured check-in mode.
func (x *Executor) CheckIn(ctx context.Context, reservationID, phone string) {
	x.logger.Info("Running check-in actions", zap.String("reservation", reservationID))

	x.locks.SetCode(ctx, phone, reservationID)

	if x.checkinMode == "" {
		x.logger.Info("No check-in mode configured, skipping mode change")
		return
	}
	if err := x.modes.Activate(ctx, x.checkinMode, "check-in:"+reservationID); err != nil {
		x.logger.Error("Check-in mode change failed",
			zap.String("reservation", reservationID), zap.Error(err))
	}
}

// CheckOut removes the guest code and sets the configured check-out mode.
func (x *Executor) CheckOut(ctx context.Context, reservationID, phone string) {
	x.logger.Info("Running check-out actions", zap.String("reservation", reservationID))

	x.locks.RemoveCode(ctx)

	if x.checkoutMode == "" {
		x.logger.Info("No check-out mode configured, skipping mode change")
		return
	}
	if err := x.modes.Activate(ctx, x.checkoutMode, "check-out:"+reservationID); err != nil {
		x.logger.Error("Check-out mode change failed",
			zap.String("reservation", reservationID), zap.Error(err))
	}
}

// ArrivingSoon sets the configured arriving-soon mode. The transition is a
// pure mode signal, so a missing mode name is an error rather than a silent
// no-op.
func (x *Executor) ArrivingSoon(ctx context.Context, reservationID string) {
	x.logger.Info("Running arriving-soon actions", zap.String("reservation", reservationID))

	if x.arrivingSoonMode == "" {
		x.logger.Error("Arriving-soon fired but no mode is configured",
			zap.String("reservation", reservationID))
		return
	}
	if err := x.modes.Activate(ctx, x.arrivingSoonMode, "arriving-soon:"+reservationID); err != nil {
		x.logger.Error("Arriving-soon mode change failed",
			zap.String("reservation", reservationID), zap.Error(err))
	}
}
