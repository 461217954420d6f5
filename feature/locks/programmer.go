package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guesthub/core/hub"

	"go.uber.org/zap"
)

// Result is the per-lock outcome of a programming batch.
type Result struct {
	// DeviceID is the lock this result belongs to.
	DeviceID string `json:"device_id"`
	// Err is nil on success.
	Err error `json:"-"`
}

// Ok reports whether the lock was programmed successfully.
func (r Result) Ok() bool { return r.Err == nil }

// Programmer writes and verifies guest codes on the configured locks.
type Programmer struct {
	hub      hub.Client
	devices  []string
	slot     string
	attempts int
	backoff  time.Duration
	settle   time.Duration
	logger   *zap.Logger
}

// NewProgrammer creates a lock programmer from the configuration.
func NewProgrammer(client hub.Client, cfg Config, logger *zap.Logger) *Programmer {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &Programmer{
		hub:      client,
		devices:  cfg.Devices(),
		slot:     cfg.Slot,
		attempts: attempts,
		backoff:  time.Duration(cfg.RetryBackoffSeconds) * time.Second,
		settle:   time.Duration(cfg.SettleSeconds) * time.Second,
		logger:   logger,
	}
}

// SetCode programs code into the guest slot of every configured lock and
// verifies the write by reading the code table back. Locks are processed
// sequentially so the device hub is never hit by parallel retry cycles; a
// failure on one lock does not stop the others.
func (p *Programmer) SetCode(ctx context.Context, code, tag string) []Result {
	results := make([]Result, 0, len(p.devices))
	for _, id := range p.devices {
		err := p.programLock(ctx, id, code, tag)
		if err != nil {
			p.logger.Error("Failed to program lock",
				zap.String("device", id),
				zap.String("tag", tag),
				zap.Error(err),
			)
		} else {
			p.logger.Info("Lock code programmed and verified",
				zap.String("device", id),
				zap.String("tag", tag),
			)
		}
		results = append(results, Result{DeviceID: id, Err: err})
	}
	return results
}

// RemoveCode clears the guest slot on every configured lock. Removal is a
// single unverified delete per lock; failures are logged and do not abort
// the batch.
func (p *Programmer) RemoveCode(ctx context.Context) []Result {
	results := make([]Result, 0, len(p.devices))
	for _, id := range p.devices {
		err := p.hub.DeleteCode(ctx, id, p.slot)
		if err != nil {
			p.logger.Error("Failed to remove lock code",
				zap.String("device", id),
				zap.Error(err),
			)
		} else {
			p.logger.Info("Lock code removed", zap.String("device", id))
		}
		results = append(results, Result{DeviceID: id, Err: err})
	}
	return results
}

// programLock runs the bounded write-and-verify retry loop for one lock.
func (p *Programmer) programLock(ctx context.Context, deviceID, code, tag string) error {
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			p.logger.Warn("Retrying lock code write",
				zap.String("device", deviceID),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			if err := wait(ctx, p.backoff); err != nil {
				return err
			}
		}

		err := p.writeAndVerify(ctx, deviceID, code, tag)
		if err == nil {
			return nil
		}
		if errors.Is(err, hub.ErrMalformedLockCodes) {
			// The device state cannot be parsed; retrying will not fix it.
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("gave up after %d attempts: %w", p.attempts, lastErr)
}

func (p *Programmer) writeAndVerify(ctx context.Context, deviceID, code, tag string) error {
	if err := p.hub.SetCode(ctx, deviceID, p.slot, code, tag); err != nil {
		return err
	}
	if err := wait(ctx, p.settle); err != nil {
		return err
	}
	if err := p.hub.Refresh(ctx, deviceID); err != nil {
		return err
	}
	if err := wait(ctx, p.settle); err != nil {
		return err
	}

	codes, err := p.hub.LockCodes(ctx, deviceID)
	if err != nil {
		return err
	}

	entry, ok := codes[p.slot]
	if !ok {
		return fmt.Errorf("slot %s empty after write", p.slot)
	}
	if entry.Code != code {
		return fmt.Errorf("slot %s reads back %q, want %q", p.slot, entry.Code, code)
	}
	return nil
}

// wait sleeps for d or until the context is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
