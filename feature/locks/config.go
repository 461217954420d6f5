package locks

import "strings"

// Config holds configuration for the lock programmer.
type Config struct {
	// DeviceIDs is the comma-separated list of lock device ids to program.
	DeviceIDs string `mapstructure:"device_ids" default:""`
	// Slot is the code table position reserved for the automated guest code.
	Slot string `mapstructure:"slot" default:"3"`
	// MaxAttempts is the bounded retry budget per lock for a verified write.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// RetryBackoffSeconds is the fixed wait before each retry.
	RetryBackoffSeconds int `mapstructure:"retry_backoff_seconds" default:"15"`
	// SettleSeconds is the wait after a write or refresh before the device
	// state is trusted.
	SettleSeconds int `mapstructure:"settle_seconds" default:"5"`
}

// Devices returns the configured device ids as a cleaned slice.
func (c Config) Devices() []string {
	var ids []string
	for _, id := range strings.Split(c.DeviceIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
