package modes

// Config holds configuration for the mode controller.
type Config struct {
	// CooldownSeconds is the window within which a repeated activation of
	// the same (mode, reason) pair is suppressed. Overlapping schedules can
	// trigger the same transition twice in quick succession; the cooldown
	// absorbs the duplicate.
	CooldownSeconds int `mapstructure:"cooldown_seconds" default:"60"`
}
