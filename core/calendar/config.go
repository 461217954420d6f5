package calendar

// Config holds configuration for the reservation feeds.
type Config struct {
	// AirbnbURL is the Airbnb ICS feed URL. Empty disables the feed.
	AirbnbURL string `mapstructure:"airbnb_url" default:""`
	// VrboURL is the VRBO ICS feed URL. Empty disables the feed.
	VrboURL string `mapstructure:"vrbo_url" default:""`
	// RetryAttempts is how many times an empty or failed fetch is retried.
	RetryAttempts int `mapstructure:"retry_attempts" default:"5"`
	// RetryIntervalSeconds is the fixed wait between fetch attempts.
	RetryIntervalSeconds int `mapstructure:"retry_interval_seconds" default:"30"`
	// TimeoutSeconds is the per-fetch HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
