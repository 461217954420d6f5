package modes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"guesthub/core/hub"

	"go.uber.org/zap"
)

// memoKey identifies one suppressible activation.
type memoKey struct {
	mode   string
	reason string
}

// Controller sets the house mode through the hub, deduplicating repeated
// requests for the same (mode, reason) pair within a cooldown window.
type Controller struct {
	hub      hub.Client
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	memo map[memoKey]time.Time
}

// NewController creates a mode controller. The now function is injectable
// for tests; pass nil to use the wall clock.
func NewController(client hub.Client, cfg Config, logger *zap.Logger, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		hub:      client,
		cooldown: time.Duration(cfg.CooldownSeconds) * time.Second,
		logger:   logger,
		now:      now,
		memo:     make(map[memoKey]time.Time),
	}
}

// Activate switches the house to the named mode. The lookup is
// case-insensitive; an unknown mode is an error. Setting the already-active
// mode is a no-op, as is repeating an identical (name, reason) activation
// within the cooldown window.
func (c *Controller) Activate(ctx context.Context, name, reason string) error {
	if name == "" {
		return fmt.Errorf("no mode name given (reason %s)", reason)
	}

	now := c.now()
	key := memoKey{mode: strings.ToLower(name), reason: reason}

	c.mu.Lock()
	// Expired memo entries are pruned lazily on each call.
	for k, t := range c.memo {
		if now.Sub(t) >= c.cooldown {
			delete(c.memo, k)
		}
	}
	if t, ok := c.memo[key]; ok && now.Sub(t) < c.cooldown {
		c.mu.Unlock()
		c.logger.Info("Mode change suppressed by cooldown",
			zap.String("mode", name),
			zap.String("reason", reason),
			zap.Time("last_applied", t),
		)
		return nil
	}
	c.mu.Unlock()

	modes, err := c.hub.Modes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list modes: %w", err)
	}

	var target *hub.Mode
	for i := range modes {
		if strings.EqualFold(modes[i].Name, name) {
			target = &modes[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown mode %q", name)
	}

	if target.Active {
		c.logger.Info("Mode already active", zap.String("mode", target.Name))
		return nil
	}

	if err := c.hub.ActivateMode(ctx, target.ID); err != nil {
		return fmt.Errorf("failed to activate mode %s: %w", target.Name, err)
	}

	c.mu.Lock()
	c.memo[key] = now
	c.mu.Unlock()

	c.logger.Info("Mode activated",
		zap.String("mode", target.Name),
		zap.String("reason", reason),
	)
	return nil
}
