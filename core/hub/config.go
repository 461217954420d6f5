package hub

// Config holds configuration for the device automation API.
type Config struct {
	// BaseURL is the root of the automation API, e.g. "http://192.168.1.10/apps/api/32".
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8081"`
	// AccessToken is the key appended to every request for authentication.
	AccessToken string `mapstructure:"access_token" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
